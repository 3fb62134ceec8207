package processing

import (
	"circle/models"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	Skipped       = 0
	UserSkipped   = 1
	Done          = 2
	Failed        = 3
	FailedStorage = 4
)

type ProcessingTask struct {
	MediaID uint64       `gorm:"primaryKey"`
	Media   models.Media `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Status  string       `gorm:"type:varchar(1024)"` // Contains comma-separated pairs of task and status, e.g. "mime:2,thumb:3"
}

func (pt *ProcessingTask) statusToMap() map[string]int {
	result := map[string]int{}
	if pt.Status == "" {
		return result
	}
	for _, v := range strings.Split(pt.Status, ",") {
		current := strings.Split(v, ":")
		if len(current) != 2 {
			zap.S().Warnf("Task status contains invalid chars, media: %d, status: %s", pt.MediaID, pt.Status)
			continue
		}
		result[current[0]], _ = strconv.Atoi(current[1])
	}
	return result
}

func (pt *ProcessingTask) updateWith(statusMap map[string]int) {
	result := []string{}
	for k, v := range statusMap {
		result = append(result, k+":"+strconv.Itoa(v))
	}
	sort.Strings(result)
	pt.Status = strings.Join(result, ",")
}
