package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/fyptrack/apps/api/echo"
	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
	emailsvc "github.com/trezcool/fyptrack/services/email"
	eventsvc "github.com/trezcool/fyptrack/services/events"
	logsvc "github.com/trezcool/fyptrack/services/logger"
	"github.com/trezcool/fyptrack/storage/blob"
	"github.com/trezcool/fyptrack/storage/database"
	sqlxrepos "github.com/trezcool/fyptrack/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	if err := run(std); err != nil {
		std.Fatalf("main: %+v", err)
	}
}

func run(std *log.Logger) error {
	conf, err := core.LoadConfig()
	if err != nil {
		return err
	}

	// logger
	var logger core.Logger
	if conf.RollbarToken != "" {
		rollLogger := logsvc.NewRollbarLogger(std, conf)
		defer rollLogger.Close()
		logger = rollLogger
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	// DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()
	sdb := sqlxrepos.New(db)

	userRepo := sqlxrepos.NewUserRepository(sdb)
	groupRepo := sqlxrepos.NewGroupRepository(sdb)
	docRepo := sqlxrepos.NewDocumentRepository(sdb)
	deadlineRepo := sqlxrepos.NewDeadlineRepository(sdb)
	gradeRepo := sqlxrepos.NewGradeRepository(sdb)
	notifRepo := sqlxrepos.NewNotificationRepository(sdb)

	// mail
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// event stream
	var events notification.EventPublisher
	if len(conf.Kafka.Brokers) > 0 {
		kafkaPub := eventsvc.NewKafkaPublisher(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer kafkaPub.Close()
		events = kafkaPub
	} else {
		events = eventsvc.NewNopPublisher()
	}

	// document uploads
	blobStore, err := blob.NewFilesystemStore(conf.Uploads.Dir)
	if err != nil {
		return err
	}

	// services
	notifSvc := notification.NewService(notifRepo, mailSvc, events, logger)
	usrSvc := user.NewService(sdb, userRepo)
	grpSvc := group.NewService(sdb, groupRepo, userRepo)
	docSvc := document.NewService(sdb, docRepo, groupRepo, userRepo, deadlineRepo, notifSvc, blobStore)
	deadlineSvc := document.NewDeadlineService(deadlineRepo, userRepo, notifSvc)
	gradeSvc := grade.NewService(sdb, gradeRepo, groupRepo, userRepo, docRepo, docSvc, notifSvc)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        conf.Server.Addr,
			Logger:         logger,
			UserSvc:        usrSvc,
			GroupSvc:       grpSvc,
			DocSvc:         docSvc,
			DeadlineSvc:    deadlineSvc,
			GradeSvc:       gradeSvc,
			NotifSvc:       notifSvc,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	<-shutdown
	std.Println("shutting down..")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Stop(ctx)
}
