package user

import (
	"time"

	"github.com/trezcool/mgawo/core"
)

// NewServiceMock wires a service with test token settings, bypassing config.
func NewServiceMock(repo Repository, mailSvc core.EmailService, logger core.Logger) ServiceInterface {
	configureTokens("secret", 3*24*time.Hour)
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}
