package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

type PostgresMeetingRepository struct {
	db *gorm.DB
}

func NewPostgresMeetingRepository(db *gorm.DB) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{db: db}
}

func (r *PostgresMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meeting == nil {
		return errors.New("meeting is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelMeeting(meeting)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrMeetingCodeExists
		}
		return storeErr(err)
	}
	return nil
}

func (r *PostgresMeetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meeting model.Meeting
	err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}

	return toDomainMeeting(&meeting), nil
}

func (r *PostgresMeetingRepository) ListPublicActive(ctx context.Context, search string) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, string(domain.MeetingStatusActive)).
		Order("created_at DESC")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(id) LIKE ?", pattern, pattern)
	}

	var meetings []model.Meeting
	if err := q.Find(&meetings).Error; err != nil {
		return nil, storeErr(err)
	}

	result := make([]*domain.Meeting, 0, len(meetings))
	for i := range meetings {
		result = append(result, toDomainMeeting(&meetings[i]))
	}
	return result, nil
}

func (r *PostgresMeetingRepository) SetHost(ctx context.Context, meetingID string, hostID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ?", meetingID).
		Update("host_id", hostID)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresMeetingRepository) End(ctx context.Context, meetingID string, endedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Meeting{}).
		Where("id = ?", meetingID).
		Updates(map[string]any{
			"status":   string(domain.MeetingStatusEnded),
			"ended_at": endedAt.UTC(),
		})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type PostgresParticipantRepository struct {
	db *gorm.DB
}

func NewPostgresParticipantRepository(db *gorm.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

func (r *PostgresParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if participant == nil {
		return errors.New("participant is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelParticipant(participant)).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participant model.Participant
	err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}

	return toDomainParticipant(&participant), nil
}

func (r *PostgresParticipantRepository) Update(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if participant == nil {
		return errors.New("participant is nil")
	}

	p := toModelParticipant(participant)
	updates := map[string]any{
		"is_host":      p.IsHost,
		"is_muted":     p.IsMuted,
		"is_connected": p.IsConnected,
	}
	if p.LeftAt == nil {
		updates["left_at"] = gorm.Expr("NULL")
	} else {
		updates["left_at"] = p.LeftAt
	}

	res := r.db.WithContext(ctx).Model(&model.Participant{}).Where("id = ?", p.ID).Updates(updates)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresParticipantRepository) ListConnected(ctx context.Context, meetingID string) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND is_connected = ?", meetingID, true).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*domain.Participant, 0, len(participants))
	for i := range participants {
		result = append(result, toDomainParticipant(&participants[i]))
	}
	return result, nil
}

func (r *PostgresParticipantRepository) CountConnected(ctx context.Context, meetingID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("meeting_id = ? AND is_connected = ?", meetingID, true).
		Count(&count).Error
	if err != nil {
		return 0, storeErr(err)
	}
	return int(count), nil
}

func (r *PostgresParticipantRepository) DisconnectAll(ctx context.Context, meetingID string, leftAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("meeting_id = ? AND is_connected = ?", meetingID, true).
		Updates(map[string]any{
			"is_connected": false,
			"left_at":      leftAt.UTC(),
		}).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

type PostgresSignalRepository struct {
	db *gorm.DB
}

func NewPostgresSignalRepository(db *gorm.DB) *PostgresSignalRepository {
	return &PostgresSignalRepository{db: db}
}

func (r *PostgresSignalRepository) Create(ctx context.Context, signal *domain.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if signal == nil {
		return errors.New("signal is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelSignal(signal)).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *PostgresSignalRepository) Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]*domain.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []model.Signal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks keep two concurrent drains for the same recipient from
		// both returning the same signal.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("meeting_id = ? AND to_id = ? AND processed = ?", meetingID, recipient, false).
			Order("created_at ASC").
			Find(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].ID)
		}
		return tx.Model(&model.Signal{}).
			Where("id IN ?", ids).
			Update("processed", true).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	result := make([]*domain.Signal, 0, len(rows))
	for i := range rows {
		signal := toDomainSignal(&rows[i])
		signal.Processed = true
		result = append(result, signal)
	}
	return result, nil
}

func toModelMeeting(m *domain.Meeting) *model.Meeting {
	var endedAt *time.Time
	if m.EndedAt != nil {
		t := m.EndedAt.UTC()
		endedAt = &t
	}
	return &model.Meeting{
		ID:              m.ID,
		Name:            m.Name,
		PasswordHash:    m.PasswordHash,
		OwnerTokenHash:  m.OwnerTokenHash,
		OwnerPrincipal:  m.OwnerPrincipal,
		IsPublic:        m.IsPublic,
		MaxParticipants: m.MaxParticipants,
		HostID:          m.HostID,
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt.UTC(),
		EndedAt:         endedAt,
	}
}

func toDomainMeeting(m *model.Meeting) *domain.Meeting {
	return &domain.Meeting{
		ID:              m.ID,
		Name:            m.Name,
		PasswordHash:    m.PasswordHash,
		OwnerTokenHash:  m.OwnerTokenHash,
		OwnerPrincipal:  m.OwnerPrincipal,
		IsPublic:        m.IsPublic,
		MaxParticipants: m.MaxParticipants,
		HostID:          m.HostID,
		Status:          domain.MeetingStatus(m.Status),
		CreatedAt:       m.CreatedAt.UTC(),
		EndedAt:         m.EndedAt,
	}
}

func toModelParticipant(p *domain.Participant) *model.Participant {
	return &model.Participant{
		ID:          p.ID,
		MeetingID:   p.MeetingID,
		Nickname:    p.Nickname,
		IsHost:      p.IsHost,
		IsMuted:     p.IsMuted,
		IsConnected: p.IsConnected,
		JoinedAt:    p.JoinedAt.UTC(),
		LeftAt:      p.LeftAt,
	}
}

func toDomainParticipant(p *model.Participant) *domain.Participant {
	return &domain.Participant{
		ID:          p.ID,
		MeetingID:   p.MeetingID,
		Nickname:    p.Nickname,
		IsHost:      p.IsHost,
		IsMuted:     p.IsMuted,
		IsConnected: p.IsConnected,
		JoinedAt:    p.JoinedAt.UTC(),
		LeftAt:      p.LeftAt,
	}
}

func toModelSignal(s *domain.Signal) *model.Signal {
	return &model.Signal{
		ID:        s.ID,
		MeetingID: s.MeetingID,
		FromID:    s.From,
		ToID:      s.To,
		Kind:      string(s.Kind),
		Payload:   s.Payload,
		CreatedAt: s.CreatedAt.UTC(),
		Processed: s.Processed,
	}
}

func toDomainSignal(s *model.Signal) *domain.Signal {
	return &domain.Signal{
		ID:        s.ID,
		MeetingID: s.MeetingID,
		From:      s.FromID,
		To:        s.ToID,
		Kind:      domain.SignalKind(s.Kind),
		Payload:   s.Payload,
		CreatedAt: s.CreatedAt.UTC(),
		Processed: s.Processed,
	}
}
