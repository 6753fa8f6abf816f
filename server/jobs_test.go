package server

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/Daskott/helmetguard/server/gstorage"
	"github.com/Daskott/helmetguard/shared"
	"github.com/go-co-op/gocron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectStoreStub struct {
	uploaded    map[string]string
	objects     map[string]string
	downloadErr error
}

func (s *objectStoreStub) UploadFile(bucket, object, filePath string) error {
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}
	s.uploaded[bucket+"/"+object] = string(data)
	return nil
}

func (s *objectStoreStub) DownloadFile(bucket, object, destFileName string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}

	data, ok := s.objects[bucket+"/"+object]
	if !ok {
		return gstorage.ErrObjectNotExist
	}
	return ioutil.WriteFile(destFileName, []byte(data), 0600)
}

var testStorageConfig = shared.StorageConfig{
	Bucket:                 "helmetguard",
	Prefix:                 "helmetguard-test",
	EventLogBackupSchedule: "*/30 * * * *",
	EnableEventLogBackup:   true,
}

func newObjectStoreStub() *objectStoreStub {
	return &objectStoreStub{uploaded: map[string]string{}, objects: map[string]string{}}
}

func TestBackupEventLog(t *testing.T) {
	store := newObjectStoreStub()
	eventLogPath := filepath.Join(t.TempDir(), "event_logs.json")

	assert.Nil(t, backupEventLog(store, testStorageConfig, eventLogPath))
	assert.Empty(t, store.uploaded, "Should skip the upload when nothing has been logged yet")

	require.Nil(t, ioutil.WriteFile(eventLogPath, []byte(`[{"type":"EMERGENCY"}]`), 0600))
	assert.Nil(t, backupEventLog(store, testStorageConfig, eventLogPath))
	assert.Equal(t, `[{"type":"EMERGENCY"}]`, store.uploaded["helmetguard/helmetguard-test/event_logs.json"])
}

func TestRestoreEventLog(t *testing.T) {
	store := newObjectStoreStub()
	store.objects["helmetguard/helmetguard-test/event_logs.json"] = `[{"type":"EMERGENCY"}]`
	eventLogPath := filepath.Join(t.TempDir(), "database", "event_logs.json")

	assert.Nil(t, restoreEventLog(store, testStorageConfig, eventLogPath))

	data, err := ioutil.ReadFile(eventLogPath)
	assert.Nil(t, err)
	assert.Equal(t, `[{"type":"EMERGENCY"}]`, string(data))

	// A local log always wins over the backup
	store.objects["helmetguard/helmetguard-test/event_logs.json"] = `[]`
	assert.Nil(t, restoreEventLog(store, testStorageConfig, eventLogPath))
	data, _ = ioutil.ReadFile(eventLogPath)
	assert.Equal(t, `[{"type":"EMERGENCY"}]`, string(data))
}

func TestRestoreEventLogWithoutBackup(t *testing.T) {
	eventLogPath := filepath.Join(t.TempDir(), "event_logs.json")

	assert.Nil(t, restoreEventLog(newObjectStoreStub(), testStorageConfig, eventLogPath))

	store := newObjectStoreStub()
	store.downloadErr = errors.New("permission denied")
	assert.NotNil(t, restoreEventLog(store, testStorageConfig, eventLogPath))
}

func TestScheduleEventLogBackup(t *testing.T) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.TagsUnique()

	err := scheduleEventLogBackup(scheduler, newObjectStoreStub(), testStorageConfig, "event_logs.json")
	assert.Nil(t, err)
	assert.Len(t, scheduler.Jobs(), 1)

	err = scheduleEventLogBackup(scheduler, newObjectStoreStub(), testStorageConfig, "event_logs.json")
	assert.NotNil(t, err, "Should not schedule the backup twice")
}
