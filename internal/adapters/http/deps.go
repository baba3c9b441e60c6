package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geokit/internal/adapters/postgres"
	"github.com/samirrijal/geokit/internal/adapters/valkey"
	"github.com/samirrijal/geokit/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Infrastructure fields may be nil;
// readiness reports them as not configured.
type Dependencies struct {
	Conversions *usecases.ConversionService
	Features    *usecases.FeatureService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
