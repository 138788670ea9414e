package parser

import "regexp"

// Role names what a capture group carries. The mapping from group position
// to role is part of each template's definition, not inferred from the
// pattern text at runtime.
type Role int

const (
	RoleMessage Role = iota
	RoleTime
	RoleRecipient
	RoleSubject
)

// Template is one utterance pattern plus the role of each capture group,
// in group order. timeText carries a literal time phrase for patterns
// whose timing is implied by a keyword rather than captured ("... tomorrow").
type Template struct {
	re       *regexp.Regexp
	roles    []Role
	timeText string
}

func tpl(pattern string, roles ...Role) Template {
	return Template{re: regexp.MustCompile(pattern), roles: roles}
}

func tplAt(pattern string, timeText string, roles ...Role) Template {
	return Template{re: regexp.MustCompile(pattern), roles: roles, timeText: timeText}
}

// match runs the template against text and returns the captured role
// values. Empty captures (unmatched optional groups) are omitted; timeText
// fills RoleTime when the pattern implies the time.
func (t Template) match(text string) (map[Role]string, bool) {
	m := t.re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	caps := make(map[Role]string, len(t.roles)+1)
	for i, role := range t.roles {
		if i+1 < len(m) && m[i+1] != "" {
			caps[role] = m[i+1]
		}
	}
	if t.timeText != "" {
		caps[RoleTime] = t.timeText
	}
	return caps, true
}
