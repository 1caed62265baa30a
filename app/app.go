package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/forms"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Forms *forms.Service
}
