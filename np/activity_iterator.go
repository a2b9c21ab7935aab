package np

import (
	"context"
	"fmt"
	"time"

	"github.com/roessland/nikeplus/nike"
)

// ActivityIterator walks weekly windows backwards from until to since and
// yields the activities of each week
type ActivityIterator struct {
	api        ActivityAPI
	ctx        context.Context
	untilDate  time.Time
	sinceDate  time.Time
	done       bool
	activities []ActivityInfo
	index      int
	err        error
	logger     Logger
	onWeek     func(weekStart, weekEnd time.Time)
}

// NewActivityIterator creates an iterator over [since, until). A zero since
// means the iterator stops at the first empty week.
func NewActivityIterator(ctx context.Context, api ActivityAPI, untilDate, sinceDate time.Time, logger Logger) *ActivityIterator {
	return &ActivityIterator{
		api:       api,
		ctx:       ctx,
		untilDate: untilDate,
		sinceDate: sinceDate,
		logger:    logger,
	}
}

// OnWeek registers a callback invoked before each week is fetched
func (it *ActivityIterator) OnWeek(fn func(weekStart, weekEnd time.Time)) {
	it.onWeek = fn
}

// Err returns the error that stopped the iteration, if any
func (it *ActivityIterator) Err() error {
	return it.err
}

func (it *ActivityIterator) fetchWeek() error {
	if !it.untilDate.After(it.sinceDate) {
		it.done = true
		return nil
	}

	weekStart := it.untilDate.AddDate(0, 0, -7)
	weekEnd := it.untilDate.AddDate(0, 0, -1)
	if it.onWeek != nil {
		it.onWeek(weekStart, weekEnd)
	}

	it.logger.Debug("fetching activities", "start_date", weekStart.Format("2006-01-02"), "end_date", weekEnd.Format("2006-01-02"))
	value, err := it.api.Activities(it.ctx, nike.ActivityQuery{StartDate: weekStart, EndDate: weekEnd})
	if err != nil {
		return fmt.Errorf("failed to fetch activities for week %s: %w", weekStart.Format("2006-01-02"), err)
	}

	activities, err := ParseActivities(value, weekStart)
	if err != nil {
		return fmt.Errorf("failed to parse activities for week %s: %w", weekStart.Format("2006-01-02"), err)
	}

	it.activities = activities
	it.index = 0
	it.untilDate = weekStart
	if it.sinceDate.IsZero() && len(activities) == 0 {
		it.done = true
	}
	return nil
}

// Next returns the next activity info and whether there are more activities
func (it *ActivityIterator) Next() (ActivityInfo, bool) {
	for !it.done && it.index >= len(it.activities) {
		if err := it.fetchWeek(); err != nil {
			it.err = err
			it.done = true
		}
	}
	if it.index >= len(it.activities) {
		return ActivityInfo{}, false
	}

	activity := it.activities[it.index]
	it.index++
	return activity, true
}
