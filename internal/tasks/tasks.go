package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/tidwall/jsonc"
	"golang.org/x/time/rate"
)

// ImportFile is the layout read by menu import. Both sections are optional.
type ImportFile struct {
	DailyMenu models.Document `json:"dailyMenu"`
	Settings  models.Document `json:"settings"`
}

// DayResult is the outcome of writing one date.
type DayResult struct {
	Date    string // Date id
	Version int64  // dailyMenu version after the write
	Error   error  // Error if the write failed
}

// ImportResult summarizes an import.
type ImportResult struct {
	Days            []DayResult // Per-date results in date order
	TotalDays       int         // Dates in the file
	Applied         int         // Dates written
	Failed          int         // Dates not written
	SettingsApplied bool        // Whether a settings patch was written
	SettingsVersion int64       // settings version after the write
}

// ImportOpts configures an import.
type ImportOpts struct {
	NumWorkers int           // Concurrent writers (default: 4, max: 8)
	RateLimit  float64       // Writes per second (default: 10)
	Window     []dates.Entry // When set, dates outside it are rejected
}

// Applier is the part of a store an import writes through.
type Applier interface {
	Apply(ctx context.Context, key models.DocumentKey, patch models.Document) (store.Snapshot, error)
}

// Importer writes imported days and settings to a store with rate limiting and progress tracking.
type Importer struct {
	store  Applier
	logger *log.Logger
}

type dayJob struct {
	id    string
	patch models.Document
}

// NewImporter creates an Importer writing through s.
func NewImporter(s Applier, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{store: s, logger: shared.WithLogger(logger, "component", "import")}
}

// ParseImport reads an import file. Comments and trailing commas are allowed; unknown top-level keys are not.
func ParseImport(data []byte) (*ImportFile, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()

	var file ImportFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if len(file.DailyMenu) == 0 && len(file.Settings) == 0 {
		return nil, fmt.Errorf("%w: nothing to import", shared.ErrInvalidInput)
	}
	return &file, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (i *Importer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Validate checks every date and the settings section before anything is written.
//
// It returns one normalized patch per date id and the normalized settings patch.
func (i *Importer) Validate(file *ImportFile, window []dates.Entry) (map[string]models.Document, models.Document, error) {
	days := make(map[string]models.Document, len(file.DailyMenu))
	for id, v := range file.DailyMenu {
		if window != nil && !dates.Contains(window, id) {
			return nil, nil, fmt.Errorf("%w: %s", shared.ErrInvalidDate, id)
		}
		patch, err := models.ValidatePatch(models.DailyMenuKey, models.Document{id: v})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		days[id] = patch
	}

	var settings models.Document
	if len(file.Settings) > 0 {
		patch, err := models.ValidatePatch(models.SettingsKey, file.Settings)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidSetting, err)
		}
		settings = patch
	}
	return days, settings, nil
}

// Import validates file and then writes each date as its own dailyMenu patch, followed by the settings patch.
//
// Nothing is written when validation fails. Failed dates are reported in the result and do not stop the others.
func (i *Importer) Import(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	file *ImportFile,
	opts ImportOpts,
) (*ImportResult, error) {
	if i.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10.0
	}

	i.sendProgress(prog, validateUpdate(len(file.DailyMenu)))
	days, settings, err := i.Validate(file, opts.Window)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(days))
	for id := range days {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := &ImportResult{
		TotalDays: len(ids),
		Days:      make([]DayResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan dayJob, len(ids))
	results := make(chan DayResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go i.worker(ctx, &wg, limiter, jobs, results)
	}

	for _, id := range ids {
		jobs <- dayJob{id: id, patch: days[id]}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Days = append(result.Days, res)
		if res.Error == nil {
			result.Applied++
			i.sendProgress(prog, dayAppliedUpdate(completed, len(ids), res.Date))
		} else {
			result.Failed++
			i.logger.Warn("failed to import day", "date", res.Date, "error", res.Error)
			i.sendProgress(prog, dayFailedUpdate(completed, len(ids), res.Date, res.Error))
		}
	}
	slices.SortFunc(result.Days, func(a, b DayResult) int { return strings.Compare(a.Date, b.Date) })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if settings != nil {
		i.sendProgress(prog, settingsUpdate(len(settings)))
		snap, err := i.store.Apply(ctx, models.SettingsKey, settings)
		if err != nil {
			return result, fmt.Errorf("%w: settings: %v", shared.ErrStoreWrite, err)
		}
		result.SettingsApplied = true
		result.SettingsVersion = snap.Version
	}

	i.logger.Info("import finished", "days", result.Applied, "failed", result.Failed, "settings", result.SettingsApplied)
	return result, nil
}

// worker writes days from the jobs channel, one limiter token per write.
func (i *Importer) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan dayJob,
	results chan<- DayResult,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- DayResult{Date: job.id, Error: err}
			continue
		}

		snap, err := i.store.Apply(ctx, models.DailyMenuKey, job.patch)
		if err != nil {
			results <- DayResult{Date: job.id, Error: fmt.Errorf("%w: %v", shared.ErrStoreWrite, err)}
			continue
		}
		results <- DayResult{Date: job.id, Version: snap.Version}
	}
}
