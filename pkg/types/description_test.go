// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestDescription_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		desc    Description
		wantErr bool
	}{
		{"simple text", "Run the test suite", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"tab only", "\t", true},
		{"multiline", "Line 1\nLine 2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.desc.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Description(%q).Validate() = %v, want nil", tt.desc, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDescription) {
				t.Errorf("error should wrap ErrInvalidDescription, got: %v", err)
			}
			var dErr *InvalidDescriptionError
			if !errors.As(err, &dErr) {
				t.Errorf("error should be *InvalidDescriptionError, got: %T", err)
			}
		})
	}
}
