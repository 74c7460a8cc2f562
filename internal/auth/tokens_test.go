package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/crucial707/hci-users/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestTokens_GenerateVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	signed, err := tokens.Generate(&models.User{ID: 7, Username: "alice"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	id, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 7 {
		t.Errorf("id: got %d, want 7", id)
	}
}

func TestTokens_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := NewTokens([]byte("test-secret"), time.Minute)
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.Generate(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokens_WrongSecret(t *testing.T) {
	signed, err := NewTokens([]byte("one"), time.Hour).Generate(&models.User{ID: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewTokens([]byte("two"), time.Hour).Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokens_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewTokens([]byte("s"), time.Hour).Verify(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokens_Garbage(t *testing.T) {
	if _, err := NewTokens([]byte("s"), time.Hour).Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
