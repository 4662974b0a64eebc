package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is serialized as {id, name, content, image?}; timestamps stay internal.
type Article struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"-" gorm:"index"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate assigns a time ordered id so that id order follows insertion order.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id.String()
	}
	return nil
}

// ArticlePatch lists the only fields an update may touch. Nil means unchanged.
type ArticlePatch struct {
	Name    *string
	Content *string
	Image   *string
}

func (p ArticlePatch) IsEmpty() bool {
	return p.Name == nil && p.Content == nil && p.Image == nil
}

// Apply copies the provided fields onto the article.
func (p ArticlePatch) Apply(a *Article) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Image != nil {
		a.Image = *p.Image
	}
}

// Columns returns the column/value pairs for a partial update.
func (p ArticlePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.Image != nil {
		cols["image"] = *p.Image
	}
	return cols
}
