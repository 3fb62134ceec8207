package models

import (
	"circle/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemoryMedia links a memory to a media item. A pair appears at most once
// and the link goes away with either side.
type MemoryMedia struct {
	ID           uint64 `gorm:"primaryKey"`
	MemoryID     uint64 `gorm:"not null;index:uniq_memory_media,unique,priority:1"`
	Memory       Memory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	MediaID      uint64 `gorm:"not null;index:uniq_memory_media,unique,priority:2;index"`
	Media        Media  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    int64
}

func (MemoryMedia) TableName() string {
	return "memory_media"
}

// LinkedMedia returns the media linked to the memory, by display order
func LinkedMedia(userID, memoryID uint64) (result []MediaInfo, err error) {
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if _, err := memoryFor(tx, userID, memoryID); err != nil {
			return err
		}
		media, orders, err := linkedMedia(tx, memoryID)
		if err != nil {
			return err
		}
		result = make([]MediaInfo, len(media))
		for i := range media {
			result[i] = media[i].Info()
			order := orders[i]
			result[i].DisplayOrder = &order
		}
		return nil
	})
	return
}

// LinkedImages returns only the linked images, used for the photo album PDF
func LinkedImages(memoryID uint64) ([]Media, error) {
	media, _, err := linkedMedia(db.Instance, memoryID)
	if err != nil {
		return nil, err
	}
	result := []Media{}
	for _, m := range media {
		if m.IsImage() {
			result = append(result, m)
		}
	}
	return result, nil
}

func linkedMedia(tx *gorm.DB, memoryID uint64) (media []Media, orders []int, err error) {
	links := []MemoryMedia{}
	err = tx.Preload("Media").
		Where("memory_id = ?", memoryID).
		Order("display_order ASC").
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return
	}
	for _, link := range links {
		media = append(media, link.Media)
		orders = append(orders, link.DisplayOrder)
	}
	return
}

// LinkMedia appends the media at the end of the memory's list.
// Linking an already linked pair changes nothing and returns created=false.
func LinkMedia(userID, memoryID, mediaID uint64) (created bool, err error) {
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnership(tx, userID, memoryID, mediaID); err != nil {
			return err
		}
		maxOrder := -1
		row := tx.Model(&MemoryMedia{}).Where("memory_id = ?", memoryID).Select("COALESCE(MAX(display_order), -1)").Row()
		if err := row.Scan(&maxOrder); err != nil {
			return err
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&MemoryMedia{
			MemoryID:     memoryID,
			MediaID:      mediaID,
			DisplayOrder: maxOrder + 1,
		})
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected > 0
		return nil
	})
	return
}

// UnlinkMedia removes the link, returns false when there was none
func UnlinkMedia(userID, memoryID, mediaID uint64) (removed bool, err error) {
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if _, err := memoryFor(tx, userID, memoryID); err != nil {
			return err
		}
		result := tx.Where("memory_id = ? AND media_id = ?", memoryID, mediaID).Delete(&MemoryMedia{})
		removed = result.RowsAffected > 0
		return result.Error
	})
	return
}

// ReplaceLinks makes the given list the memory's complete set of links, in order.
// Repeated ids keep their first position.
func ReplaceLinks(userID, memoryID uint64, mediaIDs []uint64) (linked int, err error) {
	ids := uniqueIDs(mediaIDs)
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := checkOwnership(tx, userID, memoryID, ids...); err != nil {
			return err
		}
		if err := tx.Where("memory_id = ?", memoryID).Delete(&MemoryMedia{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		links := make([]MemoryMedia, len(ids))
		for i, id := range ids {
			links[i] = MemoryMedia{MemoryID: memoryID, MediaID: id, DisplayOrder: i}
		}
		return tx.Create(&links).Error
	})
	if err == nil {
		linked = len(ids)
	}
	return
}

// ReorderLinks puts the mentioned links first, in the given order. Ids that
// aren't linked are ignored and the rest keep their relative order after them.
func ReorderLinks(userID, memoryID uint64, mediaIDs []uint64) error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		if _, err := memoryFor(tx, userID, memoryID); err != nil {
			return err
		}
		links := []MemoryMedia{}
		if err := tx.Where("memory_id = ?", memoryID).Order("display_order ASC").Order("id ASC").Find(&links).Error; err != nil {
			return err
		}
		byMedia := make(map[uint64]*MemoryMedia, len(links))
		for i := range links {
			byMedia[links[i].MediaID] = &links[i]
		}
		ordered := make([]*MemoryMedia, 0, len(links))
		placed := map[uint64]bool{}
		for _, id := range mediaIDs {
			if link, ok := byMedia[id]; ok && !placed[id] {
				ordered = append(ordered, link)
				placed[id] = true
			}
		}
		for i := range links {
			if !placed[links[i].MediaID] {
				ordered = append(ordered, &links[i])
			}
		}
		for position, link := range ordered {
			if link.DisplayOrder == position {
				continue
			}
			if err := tx.Model(&MemoryMedia{}).Where("id = ?", link.ID).Update("display_order", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// checkOwnership makes sure the memory and all the media belong to the user
func checkOwnership(tx *gorm.DB, userID, memoryID uint64, mediaIDs ...uint64) error {
	if _, err := memoryFor(tx, userID, memoryID); err != nil {
		return err
	}
	if len(mediaIDs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&Media{}).Where("user_id = ? AND id IN ?", userID, mediaIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(mediaIDs)) {
		return ErrNotFound
	}
	return nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
