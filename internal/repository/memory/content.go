package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

var (
	_ repository.ArticleRepository = (*ArticleRepository)(nil)
	_ repository.StatsRepository   = (*StatsRepository)(nil)
	_ repository.OutboxRepository  = (*OutboxRepository)(nil)
)

type ArticleRepository struct{ s *Store }

func (r *ArticleRepository) withAuthor(a *model.HealthArticle) *model.HealthArticle {
	out := clone(a)
	if a.AuthorID != nil {
		if u, ok := r.s.users[*a.AuthorID]; ok {
			first, last := u.FirstName, u.LastName
			out.AuthorFirstName, out.AuthorLastName = &first, &last
		}
	}
	return out
}

func (r *ArticleRepository) list(keep func(*model.HealthArticle) bool) []*model.HealthArticle {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.HealthArticle{}
	for _, a := range r.s.articles {
		if keep(a) {
			out = append(out, r.withAuthor(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ArticleRepository) ListPublished(_ context.Context, filter model.ArticleFilter) ([]*model.HealthArticle, error) {
	return r.list(func(a *model.HealthArticle) bool {
		if !a.IsPublished {
			return false
		}
		return filter.Category == "" || (a.Category != nil && *a.Category == filter.Category)
	}), nil
}

func (r *ArticleRepository) GetPublished(_ context.Context, id uuid.UUID) (*model.HealthArticle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.articles[id]
	if !ok || !a.IsPublished {
		return nil, repository.ErrNotFound
	}
	return r.withAuthor(a), nil
}

func (r *ArticleRepository) ListAll(_ context.Context) ([]*model.HealthArticle, error) {
	return r.list(func(*model.HealthArticle) bool { return true }), nil
}

func (r *ArticleRepository) Create(_ context.Context, article *model.HealthArticle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	article.Touch(time.Now())
	r.s.articles[article.ID] = clone(article)
	return nil
}

func (r *ArticleRepository) Update(_ context.Context, id uuid.UUID, req *model.UpdateArticleRequest) (*model.HealthArticle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	setString(&a.Title, req.Title)
	setString(&a.Content, req.Content)
	setOptional(&a.Category, req.Category)
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	a.UpdatedAt = time.Now()
	return r.withAuthor(a), nil
}

func (r *ArticleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.articles, id)
	return nil
}

type StatsRepository struct{ s *Store }

func (r *StatsRepository) Platform(_ context.Context) (*model.PlatformStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats model.PlatformStats
	for _, u := range r.s.users {
		switch {
		case u.Role == model.RolePatient:
			stats.TotalPatients++
		case u.Role == model.RoleDoctor && u.IsApproved:
			stats.TotalDoctors++
		case u.Role == model.RoleDoctor:
			stats.PendingDoctors++
		}
	}
	for _, a := range r.s.appointments {
		switch a.Status {
		case model.AppointmentStatusScheduled:
			stats.ScheduledAppointments++
		case model.AppointmentStatusCompleted:
			stats.CompletedAppointments++
		case model.AppointmentStatusCancelled:
			stats.CancelledAppointments++
		}
	}
	stats.TotalMedicalRecords = int64(len(r.s.records))
	stats.TotalPrescriptions = int64(len(r.s.prescriptions))
	return &stats, nil
}

type OutboxRepository struct{ s *Store }

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if !now.After(r.s.lastOutbox) {
		now = r.s.lastOutbox.Add(time.Nanosecond)
	}
	r.s.lastOutbox = now
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = now
	event.UpdatedAt = now
	r.s.outbox[event.ID] = clone(event)
	return nil
}

func (r *OutboxRepository) ClaimPending(_ context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	due := []*model.OutboxEvent{}
	for _, e := range r.s.outbox {
		retryable := e.Status == model.OutboxStatusFailed && e.RetryCount < maxRetries
		if (e.Status != model.OutboxStatusPending && !retryable) || (e.RetryAt != nil && e.RetryAt.After(now)) {
			continue
		}
		due = append(due, e)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]*model.OutboxEvent, 0, len(due))
	for _, e := range due {
		e.Status = model.OutboxStatusProcessing
		e.UpdatedAt = now
		out = append(out, clone(e))
	}
	return out, nil
}

func (r *OutboxRepository) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.outbox[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.Status = model.OutboxStatusProcessed
	e.ErrorMessage = nil
	e.ProcessedAt = &now
	e.UpdatedAt = now
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.outbox[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = model.OutboxStatusFailed
	e.ErrorMessage = &errorMessage
	e.RetryCount++
	e.RetryAt = &retryAt
	e.UpdatedAt = time.Now()
	return nil
}

func (r *OutboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.s.outbox, id)
			n++
		}
	}
	return n, nil
}

// Events returns a snapshot of every outbox row.
func (r *OutboxRepository) Events() []*model.OutboxEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.OutboxEvent, 0, len(r.s.outbox))
	for _, e := range r.s.outbox {
		out = append(out, clone(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
