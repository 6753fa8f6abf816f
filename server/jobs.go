package server

import (
	"errors"

	"github.com/Daskott/helmetguard/colors"
	"github.com/Daskott/helmetguard/server/gstorage"
	"github.com/Daskott/helmetguard/shared"
	"github.com/Daskott/helmetguard/utils"
	"github.com/go-co-op/gocron"
)

const BACKUP_EVENT_LOG_JOB = "backup_event_log"

type objectStore interface {
	UploadFile(bucket, object, filePath string) error
	DownloadFile(bucket, object, destFileName string) error
}

func scheduleEventLogBackup(scheduler *gocron.Scheduler, store objectStore, config shared.StorageConfig, eventLogPath string) error {
	_, err := scheduler.Cron(config.EventLogBackupSchedule).Tag(BACKUP_EVENT_LOG_JOB).
		Do(backupEventLog, store, config, eventLogPath)
	return err
}

func backupEventLog(store objectStore, config shared.StorageConfig, eventLogPath string) error {
	exists, err := utils.FileExist(eventLogPath)
	if err != nil {
		logg.Errorf("%v%v", colors.Prefix(colors.Red, "backup"), err)
		return err
	}

	// Nothing has been logged yet
	if !exists {
		return nil
	}

	object := gstorage.ObjectName(config.Prefix, eventLogPath)
	err = store.UploadFile(config.Bucket, object, eventLogPath)
	if err != nil {
		logg.Errorf("%v%v", colors.Prefix(colors.Red, "backup"), err)
		return err
	}

	logg.Infof("%vevent log uploaded to gs://%v/%v", colors.Prefix(colors.Blue, "backup"), config.Bucket, object)
	return nil
}

// restoreEventLog pulls the last backup when there is no local event log yet.
func restoreEventLog(store objectStore, config shared.StorageConfig, eventLogPath string) error {
	exists, err := utils.FileExist(eventLogPath)
	if err != nil || exists {
		return err
	}

	if err := utils.CreateParentDirIfNotExist(eventLogPath); err != nil {
		return err
	}

	object := gstorage.ObjectName(config.Prefix, eventLogPath)
	err = store.DownloadFile(config.Bucket, object, eventLogPath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("%vno event log backup found at gs://%v/%v", colors.Prefix(colors.Blue, "backup"), config.Bucket, object)
		return nil
	}
	if err != nil {
		return err
	}

	logg.Infof("%vevent log restored from gs://%v/%v", colors.Prefix(colors.Blue, "backup"), config.Bucket, object)
	return nil
}
