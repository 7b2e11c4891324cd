// Package mongodb implements storage.Store on a MongoDB database.
//
// Three collections are used: the configured task collection (one document
// per live task), "counters" (a single document holding the id counter), and
// "deleted_tasks" (soft-deleted tasks awaiting undo). Id allocation is a
// server-side atomic find-and-increment and is safe under concurrent writers;
// every other multi-step operation (remove, undo) assumes a single active
// client per context and is not wrapped in a transaction.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"quill/internal/storage"
)

const (
	// ConnectTimeout bounds construction; an unreachable server is a hard
	// construction failure, not a degraded mode.
	ConnectTimeout = 10 * time.Second

	// OpTimeout is the per-operation deadline.
	OpTimeout = 5 * time.Second

	// counterName is the _id of the id-counter document.
	counterName = "task_id"

	counterCollection = "counters"
	deletedCollection = "deleted_tasks"

	// deletedAtLayout is RFC3339 with a fixed nine-digit fraction. Undo and
	// pruning sort the stored strings, so the stamp needs sub-second
	// precision and a constant width that keeps lexicographic order equal
	// to chronological order.
	deletedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// taskDocument is the persisted form of a live task. Ordering is carried by
// the position field; documents written before positions existed carry 0 and
// fall back to task_id order.
type taskDocument struct {
	TaskID     int64          `bson:"task_id"`
	ContextKey string         `bson:"context_key"`
	Text       string         `bson:"text"`
	Status     storage.Status `bson:"status"`
	CreatedAt  string         `bson:"created_at"`
	Position   int64          `bson:"position"`
}

type counterDocument struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

type deletedTaskDocument struct {
	OID        primitive.ObjectID `bson:"_id,omitempty"`
	ContextKey string             `bson:"context_key"`
	TaskID     int64              `bson:"task_id"`
	Text       string             `bson:"text"`
	Status     storage.Status     `bson:"status"`
	CreatedAt  string             `bson:"created_at"`
	DeletedAt  string             `bson:"deleted_at"`
}

func taskFromDocument(doc taskDocument) storage.Task {
	return storage.Task{
		ID:        doc.TaskID,
		Text:      doc.Text,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
	}
}

func documentFromTask(contextKey string, task storage.Task, position int64) taskDocument {
	return taskDocument{
		TaskID:     task.ID,
		ContextKey: contextKey,
		Text:       task.Text,
		Status:     task.Status,
		CreatedAt:  task.CreatedAt,
		Position:   position,
	}
}

// effectivePosition is the sort key for a task document.
func effectivePosition(doc taskDocument) int64 {
	if doc.Position > 0 {
		return doc.Position
	}
	return doc.TaskID
}

// sortDocuments orders documents by position, task_id breaking ties.
func sortDocuments(docs []taskDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		pi, pj := effectivePosition(docs[i]), effectivePosition(docs[j])
		if pi != pj {
			return pi < pj
		}
		return docs[i].TaskID < docs[j].TaskID
	})
}

// Store implements storage.Store using MongoDB collections.
type Store struct {
	tasks    *mongo.Collection
	counters *mongo.Collection
	deleted  *mongo.Collection
	client   *mongo.Client
}

// New connects to MongoDB and verifies the connection with a ping, all within
// ConnectTimeout. Collections are created implicitly on first use.
func New(ctx context.Context, uri, database, collection string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("mongodb connection timeout after %s", ConnectTimeout)
		}
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	db := client.Database(database)
	return &Store{
		tasks:    db.Collection(collection),
		counters: db.Collection(counterCollection),
		deleted:  db.Collection(deletedCollection),
		client:   client,
	}, nil
}

// nextID atomically increments and returns the shared id counter. The upsert
// initializes the counter on first use, so allocation is race-free even with
// concurrent callers.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	filter := bson.M{"_id": counterName}
	update := bson.M{"$inc": bson.M{"value": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	if err := s.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to allocate task id: %w", err)
	}
	return counter.Value, nil
}

// fetchDocuments returns the context's task documents in presentation order.
func (s *Store) fetchDocuments(ctx context.Context, contextKey string) ([]taskDocument, error) {
	cur, err := s.tasks.Find(ctx, bson.M{"context_key": contextKey})
	if err != nil {
		return nil, wrapError(err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapError(err)
	}

	// The document model is unordered; presentation order must be imposed
	// client-side.
	sortDocuments(docs)
	return docs, nil
}

// GetTasks returns the ordered task list for a context.
func (s *Store) GetTasks(ctx context.Context, contextKey string) ([]storage.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	docs, err := s.fetchDocuments(ctx, contextKey)
	if err != nil {
		return nil, err
	}

	tasks := make([]storage.Task, len(docs))
	for i, doc := range docs {
		tasks[i] = taskFromDocument(doc)
	}
	return tasks, nil
}

// AddTask allocates the next id and inserts the task. The initial position
// equals the id, which is larger than any position already in the context,
// so new tasks always append at the end.
func (s *Store) AddTask(ctx context.Context, contextKey, text string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	id, err := s.nextID(ctx)
	if err != nil {
		return 0, wrapError(err)
	}

	task := storage.NewTask(id, text)
	if _, err := s.tasks.InsertOne(ctx, documentFromTask(contextKey, task, id)); err != nil {
		return 0, wrapError(err)
	}
	return id, nil
}

// ToggleTask cycles the task's status.
func (s *Store) ToggleTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	filter := bson.M{"context_key": contextKey, "task_id": id}

	var doc taskDocument
	if err := s.tasks.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, wrapError(err)
	}

	update := bson.M{"$set": bson.M{"status": doc.Status.Next()}}
	res, err := s.tasks.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, wrapError(err)
	}
	return res.MatchedCount > 0, nil
}

// SetTaskStatus sets the task's status directly.
func (s *Store) SetTaskStatus(ctx context.Context, contextKey string, id int64, status storage.Status) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	filter := bson.M{"context_key": contextKey, "task_id": id}
	update := bson.M{"$set": bson.M{"status": status}}

	res, err := s.tasks.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, wrapError(err)
	}
	return res.MatchedCount > 0, nil
}

// EditTask replaces the task's text.
func (s *Store) EditTask(ctx context.Context, contextKey string, id int64, newText string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	filter := bson.M{"context_key": contextKey, "task_id": id}
	update := bson.M{"$set": bson.M{"text": newText}}

	res, err := s.tasks.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, wrapError(err)
	}
	return res.MatchedCount > 0, nil
}

// RemoveTask copies the task into deleted_tasks stamped with the deletion
// time, prunes that context's deleted entries down to the newest
// storage.UndoLimit, then deletes the live document. These are sequential
// remote operations without a transaction; a failure partway through can
// leave a duplicate, which the single-active-client precondition accepts.
func (s *Store) RemoveTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	filter := bson.M{"context_key": contextKey, "task_id": id}

	var doc taskDocument
	if err := s.tasks.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, wrapError(err)
	}

	deleted := deletedTaskDocument{
		ContextKey: contextKey,
		TaskID:     doc.TaskID,
		Text:       doc.Text,
		Status:     doc.Status,
		CreatedAt:  doc.CreatedAt,
		DeletedAt:  time.Now().UTC().Format(deletedAtLayout),
	}
	if _, err := s.deleted.InsertOne(ctx, deleted); err != nil {
		return false, wrapError(err)
	}

	if err := s.pruneDeleted(ctx, contextKey); err != nil {
		return false, err
	}

	res, err := s.tasks.DeleteOne(ctx, filter)
	if err != nil {
		return false, wrapError(err)
	}
	return res.DeletedCount > 0, nil
}

// pruneDeleted keeps only the newest storage.UndoLimit deleted entries for a
// context, deleting older ones individually.
func (s *Store) pruneDeleted(ctx context.Context, contextKey string) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "deleted_at", Value: -1}}).
		SetSkip(int64(storage.UndoLimit))

	cur, err := s.deleted.Find(ctx, bson.M{"context_key": contextKey}, opts)
	if err != nil {
		return wrapError(err)
	}

	var stale []deletedTaskDocument
	if err := cur.All(ctx, &stale); err != nil {
		return wrapError(err)
	}

	for _, doc := range stale {
		if _, err := s.deleted.DeleteOne(ctx, bson.M{"_id": doc.OID}); err != nil {
			return wrapError(err)
		}
	}
	return nil
}

// UndoDelete restores the most recently deleted task for the context,
// re-appending it at the end of the presentation order. The restored
// position is drawn from the shared id counter: counter values are strictly
// increasing and the same counter feeds AddTask, so the position can never
// tie with one a later add assigns.
func (s *Store) UndoDelete(ctx context.Context, contextKey string) (*storage.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "deleted_at", Value: -1}})

	var doc deletedTaskDocument
	err := s.deleted.FindOne(ctx, bson.M{"context_key": contextKey}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}

	task := storage.Task{
		ID:        doc.TaskID,
		Text:      doc.Text,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
	}

	position, err := s.nextID(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	if _, err := s.tasks.InsertOne(ctx, documentFromTask(contextKey, task, position)); err != nil {
		return nil, wrapError(err)
	}

	if _, err := s.deleted.DeleteOne(ctx, bson.M{"_id": doc.OID}); err != nil {
		return nil, wrapError(err)
	}
	return &task, nil
}

// MoveTaskUp swaps the task's position with its predecessor's.
func (s *Store) MoveTaskUp(ctx context.Context, contextKey string, id int64) (bool, error) {
	return s.move(ctx, contextKey, id, -1)
}

// MoveTaskDown swaps the task's position with its successor's.
func (s *Store) MoveTaskDown(ctx context.Context, contextKey string, id int64) (bool, error) {
	return s.move(ctx, contextKey, id, +1)
}

// move exchanges the position fields of two adjacent-by-order documents.
// Task ids are untouched, so identity is preserved across reorders. The two
// updates are sequential remote operations without a transaction; a failure
// between them leaves the pair half-swapped, which the single-active-client
// precondition accepts.
func (s *Store) move(ctx context.Context, contextKey string, id int64, delta int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	docs, err := s.fetchDocuments(ctx, contextKey)
	if err != nil {
		return false, err
	}

	i := indexOf(docs, id)
	if i < 0 {
		return false, nil
	}
	j := i + delta
	if j < 0 || j >= len(docs) {
		return false, nil
	}

	if err := s.setPosition(ctx, contextKey, docs[i].TaskID, effectivePosition(docs[j])); err != nil {
		return false, err
	}
	if err := s.setPosition(ctx, contextKey, docs[j].TaskID, effectivePosition(docs[i])); err != nil {
		return false, err
	}
	return true, nil
}

// indexOf returns the index of the task with the given id, or -1.
func indexOf(docs []taskDocument, id int64) int {
	for i, doc := range docs {
		if doc.TaskID == id {
			return i
		}
	}
	return -1
}

func (s *Store) setPosition(ctx context.Context, contextKey string, id, position int64) error {
	filter := bson.M{"context_key": contextKey, "task_id": id}
	update := bson.M{"$set": bson.M{"position": position}}
	if _, err := s.tasks.UpdateOne(ctx, filter, update); err != nil {
		return wrapError(err)
	}
	return nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// wrapError maps driver errors to user-facing messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("request timed out")
	}
	return err
}
