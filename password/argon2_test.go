package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	digest, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("unexpected digest prefix: %s", digest)
	}

	ok, err := h.Verify("correct horse battery", digest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = h.Verify("wrong horse battery", digest)
	if err != nil {
		t.Fatalf("Verify mismatch: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h, _ := NewHasher(testConfig())

	first, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same input must differ (random salt)")
	}
}

func TestPepperChangesDigestDomain(t *testing.T) {
	cfg := testConfig()
	plain, _ := NewHasher(cfg)

	cfg.Pepper = []byte("deployment-secret")
	peppered, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher with pepper: %v", err)
	}

	digest, err := peppered.Hash("hunter2hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	// Same plaintext fails to verify without the pepper.
	ok, err := plain.Verify("hunter2hunter2", digest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("digest verified without the pepper")
	}

	ok, err = peppered.Verify("hunter2hunter2", digest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("digest failed to verify with the pepper")
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := testConfig()
	h, _ := NewHasher(weak)
	digest, err := h.Hash("some password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	strong := weak
	strong.Memory = 32 * 1024
	upgraded, _ := NewHasher(strong)

	needs, err := upgraded.NeedsRehash(digest)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if !needs {
		t.Fatal("expected digest with weaker memory cost to need rehash")
	}

	needs, err = h.NeedsRehash(digest)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if needs {
		t.Fatal("digest at current parameters must not need rehash")
	}
}

func TestVerifyRejectsMalformedDigests(t *testing.T) {
	h, _ := NewHasher(testConfig())

	cases := []string{
		"",
		"not-a-phc-string",
		"$argon2i$v=19$m=16384,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=16384,t=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=16384,t=2,p=1$!!$aGFzaGhhc2hoYXNoaGFzaA",
	}

	for _, digest := range cases {
		if _, err := h.Verify("anything", digest); err == nil {
			t.Errorf("expected error for malformed digest %q", digest)
		}
	}
}

func TestNewHasherRejectsWeakParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"low memory", func(c *Config) { c.Memory = 8 * 1024 }},
		{"low time", func(c *Config) { c.Time = 1 }},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"short salt", func(c *Config) { c.SaltLength = 8 }},
		{"short key", func(c *Config) { c.KeyLength = 8 }},
	}

	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(&cfg)
		if _, err := NewHasher(cfg); err == nil {
			t.Errorf("%s: expected config rejection", tc.name)
		}
	}
}
