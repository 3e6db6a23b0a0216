package repository

import (
	"github.com/vibely/vibely-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository member data access interface
type MemberRepository interface {
	FindByID(id string) (*domain.Member, error)
	Exists(id string) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(id string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Member{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
