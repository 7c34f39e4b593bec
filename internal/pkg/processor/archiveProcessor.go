package processor

import (
	"strings"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/archive"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/inspector"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/renamer"
	"github.com/sirupsen/logrus"
)

type ArchiveProcessor interface {
	ProcessArchive(input []byte) ([]byte, *entity.Manifest, error)
}

type Options struct {
	TempDir   string
	Limits    archive.Limits
	Inspector inspector.ImageInspector // nil disables image inspection
}

type archiveProcessor struct {
	tempDir   string
	limits    archive.Limits
	inspector inspector.ImageInspector
}

func NewArchiveProcessor(opts Options) ArchiveProcessor {
	return &archiveProcessor{
		tempDir:   opts.TempDir,
		limits:    opts.Limits,
		inspector: opts.Inspector,
	}
}

// ProcessArchive extracts input into a private workspace, renumbers the images
// of every directory, and returns the repacked archive. The workspace is
// removed before returning, whatever the outcome.
func (p *archiveProcessor) ProcessArchive(input []byte) (output []byte, manifest *entity.Manifest, err error) {
	log := logrus.WithField("input_bytes", len(input))
	state := entity.StateIdle

	ws, err := archive.NewWorkspace(p.tempDir)
	if err != nil {
		return nil, nil, entity.NewProcessError(entity.ExtractionError, "create workspace", err)
	}
	log = log.WithField("workspace", ws.Dir)

	defer func() {
		if err != nil {
			log.WithField("state", state).Debugf("%s -> %s: %v", state, entity.StateFailed, err)
		}
		if cerr := ws.Close(); cerr != nil {
			log.Errorf("failed to remove workspace: %v", cerr)
			return
		}
		log.Debugf("workspace %s", entity.StateCleanedUp)
	}()

	if err = archive.Extract(input, ws.Dir, p.limits); err != nil {
		return nil, nil, entity.NewProcessError(entity.ExtractionError, "extract", err)
	}
	state = advance(log, state, entity.StateExtracted)

	renames, err := renamer.RenameTree(ws.Dir)
	if err != nil {
		return nil, nil, entity.NewProcessError(entity.RenameError, "rename", err)
	}
	state = advance(log, state, entity.StateRenamed)

	manifest = &entity.Manifest{
		Images:  len(renames),
		Renames: renames,
	}
	if p.inspector != nil {
		manifest.Dimensions = p.inspector.Inspect(ws.Dir, renames)
	}

	output, err = archive.Build(ws.Dir)
	if err != nil {
		return nil, nil, entity.NewProcessError(entity.BuildError, "build", err)
	}

	names, err := archive.List(output)
	if err != nil {
		return nil, nil, entity.NewProcessError(entity.BuildError, "verify", err)
	}
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			manifest.Directories++
		} else {
			manifest.Files++
		}
	}
	state = advance(log, state, entity.StateBuilt)

	log.WithFields(logrus.Fields{
		"images":       manifest.Images,
		"files":        manifest.Files,
		"output_bytes": len(output),
	}).Info("archive processed")

	return output, manifest, nil
}

func advance(log *logrus.Entry, from, to entity.State) entity.State {
	log.Debugf("%s -> %s", from, to)
	return to
}
