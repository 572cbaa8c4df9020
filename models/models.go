package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleAdmin is assigned to every registered user. Roles are not editable through the API.
const RoleAdmin = "ROLE_ADMIN"

type User struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Surname   string    `gorm:"size:255;not null" json:"surname"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Image     string    `gorm:"size:255" json:"image"`
}

type Artist struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:255" json:"image"`
}

// Album.ArtistID is fixed at creation. No database constraint backs it; the
// catalog keeps albums consistent with their artist through the cascade.
type Album struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Year        int       `gorm:"index" json:"year"`
	Image       string    `gorm:"size:255" json:"image"`
	ArtistID    string    `gorm:"type:varchar(36);not null;index" json:"artist_id"`
	Artist      *Artist   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
}

type Song struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Number    int       `json:"number"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Duration  string    `gorm:"size:32" json:"duration"`
	File      string    `gorm:"size:255" json:"file"`
	AlbumID   string    `gorm:"type:varchar(36);not null;index" json:"album_id"`
	Album     *Album    `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

func (a *Artist) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

func (a *Album) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

func (s *Song) BeforeCreate(tx *gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
