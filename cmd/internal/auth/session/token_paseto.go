package session

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// Claims is the minimal identity envelope carried by a session token.
type Claims struct {
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// Manager issues and verifies signed session tokens (PASETO v4.public).
//
// The Ed25519 keypair is loaded once at construction and never rotated within
// a process lifetime; Verify performs no I/O and touches no mutable state.
type Manager struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
	ephemeral bool

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewManager builds a token Manager from config.
//
// An empty SecretKeyHex yields an ephemeral keypair (dev mode); a malformed
// key returns ErrConfig.
func NewManager(cfg Config) (*Manager, error) {
	var secret paseto.V4AsymmetricSecretKey
	ephemeral := false

	if cfg.SecretKeyHex == "" {
		secret = paseto.NewV4AsymmetricSecretKey()
		ephemeral = true
	} else {
		var err error
		secret, err = paseto.NewV4AsymmetricSecretKeyFromHex(cfg.SecretKeyHex)
		if err != nil {
			return nil, ErrConfig
		}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultConfig().TokenTTL
	}

	return &Manager{
		issuer:    cfg.Issuer,
		ttl:       ttl,
		clockSkew: cfg.ClockSkew,
		ephemeral: ephemeral,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

// Ephemeral reports whether the signing key was generated at startup rather
// than loaded from configuration.
func (m *Manager) Ephemeral() bool { return m.ephemeral }

// PublicKeyHex returns the verification key in hex form.
func (m *Manager) PublicKeyHex() string {
	return m.public.ExportHex()
}

// Issue signs a token whose subject is accountID, valid from now for the
// configured lifetime.
func (m *Manager) Issue(accountID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now) // Tokens valid immediately.
	tok.SetExpiration(exp)
	tok.SetSubject(accountID)

	signed := tok.V4Sign(m.secret, nil)
	return signed, exp, nil
}

// Verify checks signature, issuer and expiry and returns the claims.
//
// Signature/structure failures yield ErrInvalidToken; a correctly signed but
// stale token yields ErrTokenExpired so callers can tell the cases apart.
func (m *Manager) Verify(token string, now time.Time) (Claims, error) {
	// Expiry is checked manually below so that an expired-but-authentic token
	// is distinguishable from a forged one.
	p := paseto.NewParserWithoutExpiryCheck()
	p.AddRule(paseto.IssuedBy(m.issuer))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	sub, err := parsed.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, ErrInvalidToken
	}
	exp, err := parsed.GetExpiration()
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	iat, _ := parsed.GetIssuedAt()
	iss, _ := parsed.GetIssuer()

	// Clock-skew tolerance: validate slightly in the future so clocks that
	// run behind cannot stretch a token's lifetime. This makes the expiry
	// check stricter, never more lenient; a token is dead at expiresAt.
	validNow := now.Add(m.clockSkew)
	if !validNow.Before(exp) {
		return Claims{}, ErrTokenExpired
	}

	return Claims{
		AccountID: sub,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Issuer:    iss,
	}, nil
}
