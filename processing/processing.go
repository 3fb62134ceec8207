package processing

import (
	"circle/db"
	"circle/events"
	"circle/models"
	"circle/storage"
	"context"
	"time"

	"go.uber.org/zap"
)

type processingTask interface {
	getName() string
	shouldHandle(*models.Media) bool
	process(*models.Media, storage.StorageAPI) int
}

var (
	tasks     = map[string]processingTask{}
	taskOrder = []string{}

	// Media younger than this is left alone, the upload may still be in flight
	settleTime = 10 * time.Second
	idleWait   = 30 * time.Second
	batchSize  = 50
)

func registerTask(t processingTask) {
	if _, ok := tasks[t.getName()]; !ok {
		taskOrder = append(taskOrder, t.getName())
	}
	tasks[t.getName()] = t
}

func Init() {
	if err := db.Instance.AutoMigrate(&ProcessingTask{}); err != nil {
		zap.S().Errorf("Auto-migrate error: %v", err)
	}
	// Order matters, the thumbnail is only made for media detected as images
	registerTask(&mimeSniff{})
	registerTask(&thumb{})
}

type pendingRow struct {
	ID     uint64
	Status *string
}

// pendingMedia returns media without a processing record or with fewer
// task results than there are tasks
func pendingMedia() (rows []pendingRow, err error) {
	err = db.Instance.
		Table("media").
		Joins("LEFT JOIN processing_tasks ON (media.id = processing_tasks.media_id)").
		Select("media.id AS id, processing_tasks.status AS status").
		Where("media.created_at <= ? AND "+
			"(processing_tasks.status IS NULL OR processing_tasks.status = '' OR "+
			"  LENGTH(processing_tasks.status)-LENGTH(REPLACE(processing_tasks.status, ',', ''))+1 < ?)",
			time.Now().Add(-settleTime).Unix(), len(tasks)).
		Order("media.created_at").
		Limit(batchSize).
		Scan(&rows).Error
	return
}

// ProcessPending runs the outstanding tasks and returns how many media were looked at
func ProcessPending() int {
	rows, err := pendingMedia()
	if err != nil {
		zap.S().Errorf("processPending error: %v", err)
		return 0
	}
	processed := 0
	for _, row := range rows {
		media := models.Media{}
		if err = db.Instance.Preload("Bucket").First(&media, row.ID).Error; err != nil {
			zap.S().Errorf("processPending load media error: %v", err)
			continue
		}
		current := ProcessingTask{MediaID: media.ID}
		if row.Status != nil {
			current.Status = *row.Status
		}
		statusMap := current.statusToMap()
		if processOne(&media, statusMap) {
			events.Publish(media.UserID, events.Event{Type: events.TypeMedia, Action: events.ActionUpdated, ID: media.ID})
		}
		current.updateWith(statusMap)
		if row.Status == nil {
			// This is a new record
			err = db.Instance.Create(&current).Error
		} else {
			err = db.Instance.Save(&current).Error
		}
		if err != nil {
			zap.S().Errorf("processPending save task error: %v", err)
			continue
		}
		processed++
	}
	return processed
}

// processOne returns true when at least one task changed the media
func processOne(media *models.Media, statusMap map[string]int) (changed bool) {
	s := media.Storage()
	localReady := false
	for _, name := range taskOrder {
		task := tasks[name]
		if _, ok := statusMap[name]; ok {
			// One try for each task
			continue
		}
		if !task.shouldHandle(media) {
			statusMap[name] = Skipped
			continue
		}
		if s == nil {
			statusMap[name] = FailedStorage
			continue
		}
		if !localReady {
			if err := s.EnsureLocalFile(media.GetPath()); err != nil {
				zap.S().Errorf("Error fetching %s: %v", media.GetPath(), err)
				statusMap[name] = FailedStorage
				continue
			}
			defer s.ReleaseLocalFile(media.GetPath())
			localReady = true
		}
		start := time.Now()
		statusMap[name] = task.process(media, s)
		changed = changed || statusMap[name] == Done
		zap.S().Infof("Task %s, media: %d, result: %d, time: %dms", name, media.ID, statusMap[name], time.Since(start).Milliseconds())
	}
	return
}

// StartProcessing works through pending media until the context is done
func StartProcessing(ctx context.Context) {
	for {
		if ProcessPending() == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleWait):
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
	}
}
