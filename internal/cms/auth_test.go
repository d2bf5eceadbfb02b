package cms

import (
	"errors"
	domainerr "kadmeia/internal/domain/errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	tokens := map[string]string{"a1": RoleAdmin, "e1": "editor"}
	tests := []struct {
		header string
		role   string
		err    error
	}{
		{"", "", domainerr.ErrUnauthorized},
		{"a1", "", domainerr.ErrUnauthorized},
		{"Basic a1", "", domainerr.ErrUnauthorized},
		{"Bearer ", "", domainerr.ErrUnauthorized},
		{"Bearer zz", "", domainerr.ErrUnauthorized},
		{"Bearer e1", "editor", domainerr.ErrForbidden},
		{"bearer a1", RoleAdmin, nil},
		{"Bearer  a1 ", RoleAdmin, nil},
	}
	for _, tt := range tests {
		role, err := Authorize(tokens, tt.header)
		if role != tt.role || !errors.Is(err, tt.err) || (tt.err == nil && err != nil) {
			t.Errorf("Authorize(%q) = %q, %v; want %q, %v", tt.header, role, err, tt.role, tt.err)
		}
	}
}
