package testutils

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

var _ store.Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory store.Repository for unit tests.
//
// WithinTx snapshots the state and restores it when fn fails, so rollback
// behaviour can be asserted without a database. Errors can be injected per
// method with FailOn, and every call is recorded for CallCount.
type MemoryRepository struct {
	mu     sync.Mutex
	state  memoryState
	fail   map[string]error
	calls  map[string]int
	rawDue map[uuid.UUID]string
}

type memoryState struct {
	tasks         []domain.Task
	projects      []domain.Project
	statuses      []domain.ProjectStatus
	sections      []domain.ProjectSection
	recurrences   []domain.Recurrence
	members       []domain.WorkspaceMember
	notifications []domain.Notification
	activity      []domain.ActivityEvent
	comments      []domain.Comment
}

func (s memoryState) clone() memoryState {
	return memoryState{
		tasks:         slices.Clone(s.tasks),
		projects:      slices.Clone(s.projects),
		statuses:      slices.Clone(s.statuses),
		sections:      slices.Clone(s.sections),
		recurrences:   slices.Clone(s.recurrences),
		members:       slices.Clone(s.members),
		notifications: slices.Clone(s.notifications),
		activity:      slices.Clone(s.activity),
		comments:      slices.Clone(s.comments),
	}
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		fail:   make(map[string]error),
		calls:  make(map[string]int),
		rawDue: make(map[uuid.UUID]string),
	}
}

// FailOn makes every later call to method return err. A nil err clears it.
func (r *MemoryRepository) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, method)
		return
	}
	r.fail[method] = err
}

// CallCount reports how many times method has been called.
func (r *MemoryRepository) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// enter records the call and returns the injected error, if any. The caller
// must hold r.mu.
func (r *MemoryRepository) enter(method string) error {
	r.calls[method]++
	return r.fail[method]
}

// SetRawDue overrides the due text returned for a task by
// ListOpenCandidateTasks, for exercising unparseable values.
func (r *MemoryRepository) SetRawDue(taskID uuid.UUID, raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rawDue[taskID] = raw
}

// Seed helpers.

func (r *MemoryRepository) AddProject(p domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.projects = append(r.state.projects, p)
}

func (r *MemoryRepository) AddStatus(s domain.ProjectStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.statuses = append(r.state.statuses, s)
}

func (r *MemoryRepository) AddSection(s domain.ProjectSection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.sections = append(r.state.sections, s)
}

func (r *MemoryRepository) AddRecurrence(rec domain.Recurrence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.recurrences = append(r.state.recurrences, rec)
}

func (r *MemoryRepository) AddMember(m domain.WorkspaceMember) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.members = append(r.state.members, m)
}

func (r *MemoryRepository) AddTask(t domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.tasks = append(r.state.tasks, t)
}

func (r *MemoryRepository) AddNotification(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.notifications = append(r.state.notifications, n)
}

// Accessors return copies.

func (r *MemoryRepository) Tasks() []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.tasks)
}

func (r *MemoryRepository) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.notifications)
}

func (r *MemoryRepository) ActivityEvents() []domain.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.activity)
}

func (r *MemoryRepository) Comments() []domain.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.comments)
}

// WithinTx implements store.Repository.
func (r *MemoryRepository) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repo store.Repository) error,
) error {
	r.mu.Lock()
	if err := r.enter("WithinTx"); err != nil {
		r.mu.Unlock()
		return err
	}
	snapshot := r.state.clone()
	r.mu.Unlock()

	if err := fn(ctx, r); err != nil {
		r.mu.Lock()
		r.state = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

// ListOpenCandidateTasks implements store.TaskStore.
func (r *MemoryRepository) ListOpenCandidateTasks(ctx context.Context) ([]domain.DueScanTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListOpenCandidateTasks"); err != nil {
		return nil, err
	}

	out := make([]domain.DueScanTask, 0, len(r.state.tasks))
	for i := range r.state.tasks {
		t := r.state.tasks[i]
		p := t.ScanProjection()
		if raw, ok := r.rawDue[t.ID]; ok {
			p.DueAt = &raw
		}
		out = append(out, p)
	}
	return out, nil
}

// GetTask implements store.TaskStore.
func (r *MemoryRepository) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetTask"); err != nil {
		return nil, err
	}
	for _, t := range r.state.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// InsertTask implements store.TaskStore.
func (r *MemoryRepository) InsertTask(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertTask"); err != nil {
		return err
	}
	for _, t := range r.state.tasks {
		if t.ID == task.ID {
			return store.ErrDuplicate
		}
	}
	r.state.tasks = append(r.state.tasks, *task)
	return nil
}

// UpdateTask implements store.TaskStore.
func (r *MemoryRepository) UpdateTask(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateTask"); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return errors.Join(store.ErrInvalidEntity, err)
	}
	for i := range r.state.tasks {
		cur := &r.state.tasks[i]
		if cur.ID != task.ID {
			continue
		}
		cur.SectionID = task.SectionID
		cur.StatusID = task.StatusID
		cur.Title = task.Title
		cur.Description = task.Description
		cur.AssigneeID = task.AssigneeID
		cur.DueAt = task.DueAt
		cur.DueTimezone = task.DueTimezone
		cur.Priority = task.Priority
		cur.IsToday = task.IsToday
		cur.SortOrder = task.SortOrder
		cur.UpdatedAt = task.UpdatedAt.UTC()
		return nil
	}
	return store.ErrTaskNotFound
}

// MarkTaskCompleted implements store.TaskStore.
func (r *MemoryRepository) MarkTaskCompleted(
	ctx context.Context,
	id, statusID uuid.UUID,
	completedAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("MarkTaskCompleted"); err != nil {
		return err
	}
	for i := range r.state.tasks {
		if r.state.tasks[i].ID != id {
			continue
		}
		if r.state.tasks[i].CompletedAt != nil {
			return store.ErrTaskAlreadyCompleted
		}
		at := completedAt.UTC()
		r.state.tasks[i].StatusID = statusID
		r.state.tasks[i].CompletedAt = &at
		r.state.tasks[i].UpdatedAt = at
		return nil
	}
	return store.ErrTaskNotFound
}

// GetMaxSortOrder implements store.TaskStore.
func (r *MemoryRepository) GetMaxSortOrder(ctx context.Context, projectID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetMaxSortOrder"); err != nil {
		return 0, err
	}
	maxOrder := 0
	for _, t := range r.state.tasks {
		if t.ProjectID == projectID && t.SortOrder > maxOrder {
			maxOrder = t.SortOrder
		}
	}
	return maxOrder, nil
}

// GetProject implements store.ProjectStore.
func (r *MemoryRepository) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetProject"); err != nil {
		return nil, err
	}
	for _, p := range r.state.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, store.ErrProjectNotFound
}

// GetProjectsByIDs implements store.ProjectStore.
func (r *MemoryRepository) GetProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetProjectsByIDs"); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(ids))
	for _, p := range r.state.projects {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetStatusesByIDs implements store.ProjectStore.
func (r *MemoryRepository) GetStatusesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.ProjectStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetStatusesByIDs"); err != nil {
		return nil, err
	}
	out := make([]domain.ProjectStatus, 0, len(ids))
	for _, s := range r.state.statuses {
		if slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetFirstStatus implements store.ProjectStore.
func (r *MemoryRepository) GetFirstStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus("GetFirstStatus", projectID, func(domain.ProjectStatus) bool { return true })
}

// GetFirstOpenStatus implements store.ProjectStore.
func (r *MemoryRepository) GetFirstOpenStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus("GetFirstOpenStatus", projectID, func(s domain.ProjectStatus) bool { return !s.IsDone })
}

// GetFirstDoneStatus implements store.ProjectStore.
func (r *MemoryRepository) GetFirstDoneStatus(ctx context.Context, projectID uuid.UUID) (*domain.ProjectStatus, error) {
	return r.firstStatus("GetFirstDoneStatus", projectID, func(s domain.ProjectStatus) bool { return s.IsDone })
}

func (r *MemoryRepository) firstStatus(
	method string,
	projectID uuid.UUID,
	match func(domain.ProjectStatus) bool,
) (*domain.ProjectStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(method); err != nil {
		return nil, err
	}
	var matches []domain.ProjectStatus
	for _, s := range r.state.statuses {
		if s.ProjectID == projectID && match(s) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, store.ErrStatusNotFound
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].SortOrder != matches[j].SortOrder {
			return matches[i].SortOrder < matches[j].SortOrder
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

// GetFirstSection implements store.ProjectStore.
func (r *MemoryRepository) GetFirstSection(ctx context.Context, projectID uuid.UUID) (*domain.ProjectSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetFirstSection"); err != nil {
		return nil, err
	}
	var first *domain.ProjectSection
	for i := range r.state.sections {
		s := r.state.sections[i]
		if s.ProjectID != projectID {
			continue
		}
		if first == nil || s.SortOrder < first.SortOrder ||
			(s.SortOrder == first.SortOrder && s.CreatedAt.Before(first.CreatedAt)) {
			first = &s
		}
	}
	if first == nil {
		return nil, store.ErrSectionNotFound
	}
	return first, nil
}

// GetSection implements store.ProjectStore.
func (r *MemoryRepository) GetSection(ctx context.Context, id uuid.UUID) (*domain.ProjectSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetSection"); err != nil {
		return nil, err
	}
	for _, s := range r.state.sections {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, store.ErrSectionNotFound
}

// CreateProject implements store.ProjectWriter.
func (r *MemoryRepository) CreateProject(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateProject"); err != nil {
		return err
	}
	for _, existing := range r.state.projects {
		if existing.ID == p.ID {
			return store.ErrDuplicate
		}
	}
	r.state.projects = append(r.state.projects, *p)
	return nil
}

// CreateStatus implements store.ProjectWriter.
func (r *MemoryRepository) CreateStatus(ctx context.Context, s *domain.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateStatus"); err != nil {
		return err
	}
	if !r.hasProject(s.ProjectID) {
		return store.ErrInvalidEntity
	}
	r.state.statuses = append(r.state.statuses, *s)
	return nil
}

// CreateSection implements store.ProjectWriter.
func (r *MemoryRepository) CreateSection(ctx context.Context, s *domain.ProjectSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateSection"); err != nil {
		return err
	}
	if !r.hasProject(s.ProjectID) {
		return store.ErrInvalidEntity
	}
	r.state.sections = append(r.state.sections, *s)
	return nil
}

// hasProject must be called with r.mu held.
func (r *MemoryRepository) hasProject(id uuid.UUID) bool {
	for _, p := range r.state.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Statuses returns a copy of every stored status.
func (r *MemoryRepository) Statuses() []domain.ProjectStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.statuses)
}

// Sections returns a copy of every stored section.
func (r *MemoryRepository) Sections() []domain.ProjectSection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.state.sections)
}

// ListExistingNotifications implements store.NotificationStore.
func (r *MemoryRepository) ListExistingNotifications(
	ctx context.Context,
	entityType domain.EntityType,
	types []domain.NotificationType,
	entityIDs []uuid.UUID,
) ([]domain.NotificationKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListExistingNotifications"); err != nil {
		return nil, err
	}
	var out []domain.NotificationKey
	for _, n := range r.state.notifications {
		if n.EntityType == entityType && slices.Contains(types, n.Type) &&
			slices.Contains(entityIDs, n.EntityID) {
			out = append(out, n.Key())
		}
	}
	return out, nil
}

// InsertNotifications implements store.NotificationStore.
func (r *MemoryRepository) InsertNotifications(ctx context.Context, notifications []domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertNotifications"); err != nil {
		return err
	}
	r.state.notifications = append(r.state.notifications, notifications...)
	return nil
}

// InsertDueNotifications implements store.NotificationStore. Rows whose
// due key already exists are dropped, like the unique index on the SQL
// schema.
func (r *MemoryRepository) InsertDueNotifications(
	ctx context.Context,
	notifications []domain.Notification,
) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertDueNotifications"); err != nil {
		return 0, err
	}

	existing := make(map[domain.NotificationKey]struct{})
	for _, n := range r.state.notifications {
		if n.EntityType == domain.EntityTask && slices.Contains(domain.DueNotificationTypes, n.Type) {
			existing[n.Key()] = struct{}{}
		}
	}

	inserted := 0
	for _, n := range notifications {
		if _, dup := existing[n.Key()]; dup {
			continue
		}
		existing[n.Key()] = struct{}{}
		r.state.notifications = append(r.state.notifications, n)
		inserted++
	}
	return inserted, nil
}

// ListNotificationsForUser implements store.NotificationStore.
func (r *MemoryRepository) ListNotificationsForUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListNotificationsForUser"); err != nil {
		return nil, err
	}
	var out []domain.Notification
	for _, n := range r.state.notifications {
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) > 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkNotificationRead implements store.NotificationStore.
func (r *MemoryRepository) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("MarkNotificationRead"); err != nil {
		return err
	}
	for i := range r.state.notifications {
		n := &r.state.notifications[i]
		if n.ID != id || n.UserID != userID {
			continue
		}
		if n.ReadAt == nil {
			at := readAt.UTC()
			n.ReadAt = &at
		}
		return nil
	}
	return store.ErrNotificationNotFound
}

// GetRecurrence implements store.RecurrenceStore.
func (r *MemoryRepository) GetRecurrence(ctx context.Context, id uuid.UUID) (*domain.Recurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetRecurrence"); err != nil {
		return nil, err
	}
	for _, rec := range r.state.recurrences {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, store.ErrRecurrenceNotFound
}

// InsertActivityEvent implements store.ActivityStore.
func (r *MemoryRepository) InsertActivityEvent(ctx context.Context, event *domain.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertActivityEvent"); err != nil {
		return err
	}
	r.state.activity = append(r.state.activity, *event)
	return nil
}

// InsertComment implements store.CommentStore.
func (r *MemoryRepository) InsertComment(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertComment"); err != nil {
		return err
	}
	r.state.comments = append(r.state.comments, *comment)
	return nil
}

// ListWorkspaceMembers implements store.MembershipStore.
func (r *MemoryRepository) ListWorkspaceMembers(
	ctx context.Context,
	workspaceID uuid.UUID,
) ([]domain.WorkspaceMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListWorkspaceMembers"); err != nil {
		return nil, err
	}
	var out []domain.WorkspaceMember
	for _, m := range r.state.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}
