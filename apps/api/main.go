package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/trezcool/mgawo/apps/api/echo"
	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/reader"
	"github.com/trezcool/mgawo/core/user"
	emailsvc "github.com/trezcool/mgawo/services/email"
	logsvc "github.com/trezcool/mgawo/services/logger"
	matchingsvc "github.com/trezcool/mgawo/services/matching"
	"github.com/trezcool/mgawo/storage/database"
	sqlxrepos "github.com/trezcool/mgawo/storage/database/sqlx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	matcher := matchingsvc.NewClient(core.Conf)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db, core.Conf), mailSvc, logger, core.Conf)
	instSvc := instance.NewService(sqlxrepos.NewInstanceRepository(db, core.Conf), logger)
	allocSvc := allocation.NewService(sqlxrepos.NewAllocationRepository(db, core.Conf), matcher, mailSvc, logger)
	readerSvc := reader.NewService(sqlxrepos.NewReaderRepository(db, core.Conf), matcher, logger)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Server.Host + ":" + core.Conf.Server.Port,
			Logger:      logger,
			UserSvc:     usrSvc,
			InstanceSvc: instSvc,
			AllocSvc:    allocSvc,
			ReaderSvc:   readerSvc,
		},
	)

	go app.Start()

	// =========================================================================
	// Shutdown

	sig := <-app.ShutdownSignal()
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = app.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, conf); err != nil {
		return nil, err
	}
	return db, nil
}
