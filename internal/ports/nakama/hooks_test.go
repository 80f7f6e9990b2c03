package nakama

import (
	"testing"

	"github.com/form3tech-oss/jwt-go"
)

func TestExtractUserIDFromToken(t *testing.T) {
	signed := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-key"))
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}
		return token
	}

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"uid claim", signed(jwt.MapClaims{"uid": "user-1", "usn": "ada"}), "user-1", false},
		{"missing uid", signed(jwt.MapClaims{"usn": "ada"}), "", true},
		{"not a token", "garbage", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractUserIDFromToken(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("uid = %q, want %q", got, tt.want)
			}
		})
	}
}
