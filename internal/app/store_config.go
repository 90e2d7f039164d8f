package app

import (
	"strings"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/internal/database"
	"github.com/charlesng35/wedding-rsvp/internal/store"
)

// Store drivers.
const (
	StoreDriverSQL       = "sql"
	StoreDriverFirestore = "firestore"
)

// StoreDriver returns the normalised store driver name.
func (c *Config) StoreDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if driver == "" {
		return StoreDriverSQL
	}
	return driver
}

// DatabaseSettings converts DatabaseConfig to the database package representation.
func (c DatabaseConfig) DatabaseSettings() database.Config {
	cfg := database.Config{
		Driver:    c.Driver,
		Path:      c.Path,
		DSN:       c.DSN,
		SlowQuery: c.SlowQuery,
	}

	var host DBAuthConfig
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql", "mariadb":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host = host.Host
	cfg.Port = host.Port
	cfg.Name = host.Database
	cfg.User = host.Username
	cfg.Password = host.Password
	cfg.Options = host.Options
	return cfg
}

// FirestoreSettings builds the Firestore store configuration.
func (c *Config) FirestoreSettings() store.FirestoreConfig {
	return store.FirestoreConfig{
		ProjectID:   strings.TrimSpace(c.Firebase.ProjectID),
		ClientEmail: strings.TrimSpace(c.Firebase.ClientEmail),
		PrivateKey:  store.ExpandPrivateKey(c.Firebase.PrivateKey),
		Collection:  c.Store.Collection,
	}
}

// AdminSettings converts AdminConfig to the auth package representation.
func (c AdminConfig) AdminSettings() auth.AdminConfig {
	return auth.AdminConfig{
		Username: c.Username,
		Password: c.Password,
		Token:    c.Token,
	}
}
