// Package versioning locates dated, versioned snapshot files
// ("<name> <YYYYMMDD>.v<N>.xlsx") and tracks their lineage. Within a month
// versions are totally ordered by N; the last version of a month precedes
// v1 of the next month.
package versioning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/utils"
)

// Filenames may carry arbitrary text around the date/version token; only the
// token matters. Excel drops "~$..." lock files next to open workbooks and
// those must never count as versions.
var versionPattern = regexp.MustCompile(`(\d{8})\.v(\d+)`)

const lockFilePrefix = "~$"

// Version is one resolved snapshot file.
type Version struct {
	Date string // YYYYMMDD
	N    int
	Path string
}

// ParseFilename extracts the date and version number from a snapshot
// filename. ok is false for lock files, non-workbooks and names without a
// version token.
func ParseFilename(name string) (date string, n int, ok bool) {
	if strings.HasPrefix(name, lockFilePrefix) || !strings.HasSuffix(name, ".xlsx") {
		return "", 0, false
	}
	m := versionPattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

func scanVersions(dir, date string) ([]Version, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var found []Version
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, n, ok := ParseFilename(e.Name())
		if !ok || d != date {
			continue
		}
		found = append(found, Version{Date: d, N: n, Path: filepath.Join(dir, e.Name())})
	}
	return found, nil
}

// ScanLatest returns the highest-numbered version for the date in dir.
func ScanLatest(dir, date string) (Version, error) {
	found, err := scanVersions(dir, date)
	if err != nil {
		return Version{}, err
	}
	var latest Version
	for _, v := range found {
		if v.N > latest.N {
			latest = v
		}
	}
	if latest.N == 0 {
		return Version{}, &utils.NoVersionFoundError{Date: date, Dir: dir}
	}
	return latest, nil
}

// ScanNext returns the version number to assign to a new snapshot for the
// date: one past the latest, or 1 when the date has no versions yet.
func ScanNext(dir, date string) (int, error) {
	latest, err := ScanLatest(dir, date)
	if err != nil {
		var notFound *utils.NoVersionFoundError
		if errors.As(err, &notFound) {
			return 1, nil
		}
		return 0, err
	}
	return latest.N + 1, nil
}

// Resolver answers latest/previous/next version queries for one versioned
// folder. When a lineage index is attached it is consulted first and the
// directory scan is the fallback.
type Resolver struct {
	dir    string
	index  *LineageIndex
	logger *logrus.Logger
}

func NewResolver(dir string, index *LineageIndex, logger *logrus.Logger) *Resolver {
	return &Resolver{dir: dir, index: index, logger: logger}
}

func (r *Resolver) Dir() string {
	return r.dir
}

// Latest returns the highest version for the date.
func (r *Resolver) Latest(ctx context.Context, date string) (Version, error) {
	if r.index != nil {
		rec, err := r.index.Latest(ctx, date)
		if err != nil {
			r.logger.WithError(err).Warn("lineage index lookup failed, falling back to directory scan")
		} else if rec != nil {
			if _, statErr := os.Stat(rec.Path); statErr == nil {
				return Version{Date: rec.ReportDate, N: rec.Version, Path: rec.Path}, nil
			}
			r.logger.WithField("path", rec.Path).Warn("indexed snapshot missing on disk, falling back to directory scan")
		}
	}
	return ScanLatest(r.dir, date)
}

// Next returns the version number a new snapshot for the date should get.
func (r *Resolver) Next(ctx context.Context, date string) (int, error) {
	latest, err := r.Latest(ctx, date)
	if err != nil {
		var notFound *utils.NoVersionFoundError
		if errors.As(err, &notFound) {
			return 1, nil
		}
		return 0, err
	}
	return latest.N + 1, nil
}

// Previous returns the version chronologically before (date, current):
// same month one version back, or for v1 the highest version of the prior
// month-end. A missing same-month predecessor is an error, never a silent
// fallback. (nil, nil) means v1 of the first recorded month.
func (r *Resolver) Previous(ctx context.Context, date string, current int) (*Version, error) {
	if current > 1 {
		target := current - 1
		if r.index != nil {
			rec, err := r.index.Find(ctx, date, target)
			if err != nil {
				r.logger.WithError(err).Warn("lineage index lookup failed, falling back to directory scan")
			} else if rec != nil {
				if _, statErr := os.Stat(rec.Path); statErr == nil {
					return &Version{Date: rec.ReportDate, N: rec.Version, Path: rec.Path}, nil
				}
				r.logger.WithField("path", rec.Path).Warn("indexed snapshot missing on disk, falling back to directory scan")
			}
		}
		found, err := scanVersions(r.dir, date)
		if err != nil {
			return nil, err
		}
		for _, v := range found {
			if v.N == target {
				return &v, nil
			}
		}
		return nil, &utils.VersionNotFoundError{Date: date, Version: target, Dir: r.dir}
	}

	t, err := utils.ParseReportDate(date)
	if err != nil {
		return nil, err
	}
	priorDate := utils.PriorMonthEnd(t).Format(utils.ReportDateLayout)

	latest, err := r.Latest(ctx, priorDate)
	if err != nil {
		var notFound *utils.NoVersionFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return &latest, nil
}
