package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGrowthSpurt BookmarkType = "growth_spurt"
	BookmarkDieOff      BookmarkType = "die_off"
	BookmarkFirstFruit  BookmarkType = "first_fruit"
	BookmarkStablePlant BookmarkType = "stable_plant"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Turn        int
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"turn", b.Turn,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a session from its
// window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentCellPeak     int
	sawFruit           bool
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable plant detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstFruit(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Growth spurt: builds > 2x rolling average
		if b := bd.checkGrowthSpurt(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Die-off: cells dropped >30% from recent peak
		if b := bd.checkDieOff(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable plant: low cell count variance over 5+ windows
		if b := bd.checkStablePlant(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Cells > bd.recentCellPeak {
		bd.recentCellPeak = stats.Cells
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstFruit(stats WindowStats) *Bookmark {
	if bd.sawFruit || stats.Fruit == 0 {
		return nil
	}
	bd.sawFruit = true
	return &Bookmark{
		Type:        BookmarkFirstFruit,
		Turn:        stats.WindowEndTurn,
		Description: fmt.Sprintf("Fruit built with %d cells in the plant", stats.Cells),
	}
}

func (bd *BookmarkDetector) checkGrowthSpurt(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalBuilds int
	for _, h := range history {
		totalBuilds += h.Builds
	}
	avgBuilds := float64(totalBuilds) / float64(len(history))
	if avgBuilds == 0 {
		return nil
	}

	if float64(stats.Builds) > avgBuilds*2.0 && stats.Builds >= 3 {
		return &Bookmark{
			Type:        BookmarkGrowthSpurt,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("%d builds is %.1fx average (%.2f)", stats.Builds, float64(stats.Builds)/avgBuilds, avgBuilds),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkDieOff(stats WindowStats) *Bookmark {
	if bd.recentCellPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Cells)/float64(bd.recentCellPeak)
	if dropPercent > 0.30 && stats.Cells <= bd.recentCellPeak-3 {
		// Reset peak after the die-off
		oldPeak := bd.recentCellPeak
		bd.recentCellPeak = stats.Cells

		return &Bookmark{
			Type:        BookmarkDieOff,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("Cells dropped %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Cells),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStablePlant(stats WindowStats) *Bookmark {
	if stats.Cells < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Cells)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Cells) - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePlant,
			Turn:        stats.WindowEndTurn,
			Description: fmt.Sprintf("Stable plant of %d cells over 5+ windows", stats.Cells),
		}
	}

	return nil
}
