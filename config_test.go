package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{port: 8080}, false},
		{"port too low", Config{port: 0}, true},
		{"port too high", Config{port: 65536}, true},
		{"tls cert without key", Config{port: 8080, tlsCert: "cert.pem"}, true},
		{"tls key without cert", Config{port: 8080, tlsKey: "key.pem"}, true},
		{"tls pair", Config{port: 8080, tlsCert: "cert.pem", tlsKey: "key.pem"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	plain := Config{}
	assert.Equal(t, "http", plain.scheme())

	tls := Config{tlsCert: "cert.pem", tlsKey: "key.pem"}
	assert.Equal(t, "https", tls.scheme())
}
