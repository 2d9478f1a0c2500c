package control

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// ErrPrecondition marks a command rejected before any engine call.
var ErrPrecondition = errors.New("precondition failed")

// Command names.
const (
	CreateIndex        = "create_index"
	DeleteIndex        = "delete_index"
	CreateControlIndex = "create_control_index"
	DeleteControlIndex = "delete_control_index"
	LoadDocuments      = "load_documents"
	DeleteDocument     = "delete_document"
	DeleteDocuments    = "delete_documents"
	SetDocumentsStatus = "set_documents_status"
	Check              = "check"
)

const (
	matchAllQuery      = `{"query":{"match_all":{}}}`
	documentFileSuffix = ".json"
)

// Commands lists every command Run accepts.
var Commands = []string{
	CreateIndex, DeleteIndex, CreateControlIndex, DeleteControlIndex,
	LoadDocuments, DeleteDocument, DeleteDocuments, SetDocumentsStatus, Check,
}

// Command is one control invocation.
type Command struct {
	Name string
	Arg  string
}

// Report summarizes what a command changed.
type Report struct {
	Loaded  int
	Failed  int
	Deleted int
	Record  *domain.ControlRecord
}

// Indices names the indices the commands operate on.
type Indices struct {
	Primary string
	Control string
}

// Service runs single-shot index control commands.
type Service struct {
	indices   IndexManager
	documents DocumentWriter
	status    StatusWriter
	engine    Pinger
	names     Indices
	validator *documentValidator
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a control service.
func New(
	indices IndexManager, documents DocumentWriter, status StatusWriter, engine Pinger,
	names Indices, logger *zap.Logger,
) (*Service, error) {
	v, err := newDocumentValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		indices:   indices,
		documents: documents,
		status:    status,
		engine:    engine,
		names:     names,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// WithClock overrides the time source used for control records.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Run checks the command's preconditions, then executes it.
// Precondition failures wrap ErrPrecondition and never reach the engine.
func (s *Service) Run(ctx context.Context, cmd Command) (Report, error) {
	if err := s.precheck(cmd); err != nil {
		s.logger.Warn("Command rejected",
			zap.String("command", cmd.Name),
			zap.String("argument", cmd.Arg),
			zap.Error(err),
		)
		return Report{}, err
	}

	switch cmd.Name {
	case CreateIndex:
		return Report{}, s.createIndex(ctx, s.names.Primary, cmd.Arg)
	case CreateControlIndex:
		return Report{}, s.createIndex(ctx, s.names.Control, cmd.Arg)
	case DeleteIndex:
		return Report{}, s.deleteIndex(ctx, s.names.Primary)
	case DeleteControlIndex:
		return Report{}, s.deleteIndex(ctx, s.names.Control)
	case LoadDocuments:
		return s.loadDocuments(ctx, cmd.Arg)
	case DeleteDocument:
		return s.deleteDocument(ctx, cmd.Arg)
	case DeleteDocuments:
		return s.deleteDocuments(ctx, cmd.Arg)
	case SetDocumentsStatus:
		return s.setStatus(ctx, cmd.Arg)
	default:
		return Report{}, s.check(ctx)
	}
}

func (s *Service) precheck(cmd Command) error {
	switch cmd.Name {
	case CreateIndex:
		return firstErr(indexNamed(s.names.Primary, "primary"), fileExists(cmd.Arg, "mapping file"))
	case CreateControlIndex:
		return firstErr(indexNamed(s.names.Control, "control"), fileExists(cmd.Arg, "mapping file"))
	case DeleteIndex:
		return indexNamed(s.names.Primary, "primary")
	case DeleteControlIndex:
		return indexNamed(s.names.Control, "control")
	case LoadDocuments:
		return firstErr(indexNamed(s.names.Primary, "primary"), dirExists(cmd.Arg))
	case DeleteDocument:
		if cmd.Arg == "" {
			return fmt.Errorf("%w: %s needs a document id", ErrPrecondition, cmd.Name)
		}
		return indexNamed(s.names.Primary, "primary")
	case DeleteDocuments:
		if cmd.Arg == "" {
			return indexNamed(s.names.Primary, "primary")
		}
		return firstErr(indexNamed(s.names.Primary, "primary"), fileExists(cmd.Arg, "query file"))
	case SetDocumentsStatus:
		if err := indexNamed(s.names.Control, "control"); err != nil {
			return err
		}
		if _, err := domain.ParseDocumentsStatus(cmd.Arg); err != nil {
			return fmt.Errorf("%w: %w", ErrPrecondition, err)
		}
		return nil
	case Check:
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q (known: %s)", ErrPrecondition, cmd.Name, strings.Join(Commands, ", "))
	}
}

func (s *Service) createIndex(ctx context.Context, name, mappingFile string) error {
	mapping, err := os.ReadFile(mappingFile)
	if err != nil {
		return fmt.Errorf("read mapping: %w", err)
	}
	if err := s.indices.Create(ctx, name, mapping); err != nil {
		s.logger.Error("Index creation failed", zap.String("index", name), zap.Error(err))
		return err
	}
	s.logger.Info("Index created", zap.String("index", name), zap.String("mapping", mappingFile))
	return nil
}

func (s *Service) deleteIndex(ctx context.Context, name string) error {
	if err := s.indices.Delete(ctx, name); err != nil {
		s.logger.Error("Index deletion failed", zap.String("index", name), zap.Error(err))
		return err
	}
	s.logger.Info("Index deleted", zap.String("index", name))
	return nil
}

// loadDocuments creates one document per .json file, in file name order.
// A bad file is counted and skipped.
func (s *Service) loadDocuments(ctx context.Context, folder string) (Report, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return Report{}, fmt.Errorf("read folder: %w", err)
	}

	var rep Report
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), documentFileSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := s.loadDocument(ctx, filepath.Join(folder, e.Name())); err != nil {
			rep.Failed++
			s.logger.Error("Document load failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		rep.Loaded++
		s.logger.Info("Document loaded", zap.String("file", e.Name()))
	}

	s.logger.Info("Documents loaded",
		zap.String("folder", folder),
		zap.Int("loaded", rep.Loaded),
		zap.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (s *Service) loadDocument(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	id, err := s.validator.documentID(raw)
	if err != nil {
		return err
	}
	return s.documents.Create(ctx, id, raw)
}

func (s *Service) deleteDocument(ctx context.Context, id string) (Report, error) {
	if err := s.documents.Delete(ctx, id); err != nil {
		s.logger.Error("Document deletion failed", zap.String("id", id), zap.Error(err))
		return Report{}, err
	}
	s.logger.Info("Document deleted", zap.String("id", id))
	return Report{Deleted: 1}, nil
}

func (s *Service) deleteDocuments(ctx context.Context, queryFile string) (Report, error) {
	body := []byte(matchAllQuery)
	if queryFile != "" {
		b, err := os.ReadFile(queryFile)
		if err != nil {
			return Report{}, fmt.Errorf("read query: %w", err)
		}
		body = b
	}
	n, err := s.documents.DeleteByQuery(ctx, body)
	if err != nil {
		s.logger.Error("Documents deletion failed", zap.Error(err))
		return Report{}, err
	}
	s.logger.Info("Documents deleted", zap.Int("deleted", n))
	return Report{Deleted: n}, nil
}

func (s *Service) setStatus(ctx context.Context, arg string) (Report, error) {
	st, err := domain.ParseDocumentsStatus(arg)
	if err != nil {
		return Report{}, err
	}
	rec, err := s.status.Put(ctx, st, s.now())
	if err != nil {
		s.logger.Error("Documents status update failed", zap.String("status", arg), zap.Error(err))
		return Report{}, err
	}
	s.logger.Info("Documents status set", zap.String("status", string(rec.Status)), zap.String("created", rec.Created))
	return Report{Record: &rec}, nil
}

func (s *Service) check(ctx context.Context) error {
	if err := s.engine.Ping(ctx); err != nil {
		s.logger.Error("Elasticsearch unavailable", zap.Error(err))
		return err
	}
	s.logger.Info("Elasticsearch available")
	return nil
}

func indexNamed(name, role string) error {
	if name == "" {
		return fmt.Errorf("%w: %s index name not configured", ErrPrecondition, role)
	}
	return nil
}

func fileExists(path, what string) error {
	if path == "" {
		return fmt.Errorf("%w: %s argument missing", ErrPrecondition, what)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPrecondition, what, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s %s is a directory", ErrPrecondition, what, path)
	}
	return nil
}

func dirExists(path string) error {
	if path == "" {
		return fmt.Errorf("%w: folder argument missing", ErrPrecondition)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: folder: %w", ErrPrecondition, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a folder", ErrPrecondition, path)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
