package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bundl/bundl/pkg/auth"
)

type fakeJWTService struct {
	token string
	err   error
	seen  string
}

func (f *fakeJWTService) GenerateJWT(userID string, expirationTime time.Time) (string, error) {
	f.seen = userID
	return f.token, f.err
}

func (f *fakeJWTService) ValidateToken(tokenString string) (*auth.Claims, error) {
	return nil, nil
}

func TestJWTTokenIssuer_Issue(t *testing.T) {
	fake := &fakeJWTService{token: "signed-token"}
	issuer := NewJWTTokenIssuer(fake, nil, "bundl:")

	tok, err := issuer.Issue("u1")
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", tok)
	assert.Equal(t, "u1", fake.seen)
}

func TestJWTTokenIssuer_BlacklistKey(t *testing.T) {
	issuer := NewJWTTokenIssuer(&fakeJWTService{}, nil, "bundl:")
	assert.Equal(t, "bundl:token:blacklist:abc", issuer.blacklistKey("abc"))
}
