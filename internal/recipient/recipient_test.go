package recipient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		token string
		want  bool
	}{
		{"8136414177", true},
		{"+18136414177", true},
		{"813-641-4177", true},
		{"(813) 641-4177", true},
		{"+44 20 7946 0958", true},
		{"12345", false},      // too short
		{"+1813abc4177", false},
		{"john", false},
		{"john@example.com", false},
		{"", false},
		{"+", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPhoneNumber(tt.token), "token %q", tt.token)
	}
}

func TestIsEmailAddress(t *testing.T) {
	t.Parallel()
	assert.True(t, IsEmailAddress("john@example.com"))
	assert.True(t, IsEmailAddress("  first.last+tag@sub.example.co  "))
	assert.False(t, IsEmailAddress("john@example"))
	assert.False(t, IsEmailAddress("not an email"))
	assert.False(t, IsEmailAddress("8136414177"))
	assert.False(t, IsEmailAddress(""))
}

// A canonical E.164 number must never classify as both phone and email.
func TestClassificationMutuallyExclusive(t *testing.T) {
	t.Parallel()
	for _, token := range []string{"+18136414177", "8136414177", "john@example.com"} {
		phone := IsPhoneNumber(token)
		email := IsEmailAddress(token)
		assert.False(t, phone && email, "token %q classified as both", token)
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"8136414177", "+18136414177"},
		{"18136414177", "+18136414177"},
		{"+18136414177", "+18136414177"}, // idempotent
		{"(813) 641-4177", "+18136414177"},
		{"+44 20 7946 0958", "+442079460958"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPhoneNumber(tt.in), "input %q", tt.in)
	}
}

func TestSplitRecipients(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"John and Mary", []string{"John", "Mary"}},
		{"a, b, and c", []string{"a", "b", "c"}},
		{"John & Mary", []string{"John", "Mary"}},
		{"John, Mary, Bob", []string{"John", "Mary", "Bob"}},
		{"John", []string{"John"}},
		{"  John , Mary ", []string{"John", "Mary"}},
		{"8136414177 and mary@example.com", []string{"8136414177", "mary@example.com"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitRecipients(tt.in), "input %q", tt.in)
	}
}
