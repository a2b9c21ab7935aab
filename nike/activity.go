package nike

import (
	"context"
	"net/http"
	"time"
)

const (
	activitiesResource = "me/sport/activities"
	dateLayout         = "2006-01-02"
)

// ActivityQuery narrows an activity listing. Zero fields are left out.
type ActivityQuery struct {
	// Count limits the page size. Zero or negative means unset and is not sent.
	Count int

	StartDate time.Time
	EndDate   time.Time
}

func (q ActivityQuery) params() Params {
	var p Params
	if q.Count > 0 {
		p = p.Set("count", q.Count)
	}
	if !q.StartDate.IsZero() {
		p = p.Set("startDate", q.StartDate.Format(dateLayout))
	}
	if !q.EndDate.IsZero() {
		p = p.Set("endDate", q.EndDate.Format(dateLayout))
	}
	return p
}

// NewActivity is the payload of AddActivity.
type NewActivity struct {
	ActivityType string
	DeviceType   string
	StartTime    int64 // milliseconds since the epoch
	TimeZoneName string
	Metrics      any
	DeviceName   string
}

// ActivityGateway lists, reads and records sport activities.
type ActivityGateway struct {
	EndpointGateway
}

// NewActivityGateway is the registry constructor for "Activity".
func NewActivityGateway(configuration map[string]any, logger Logger) *ActivityGateway {
	return &ActivityGateway{EndpointGateway: NewEndpointGateway(configuration, logger)}
}

func (g *ActivityGateway) Activities(ctx context.Context, query ActivityQuery) (any, error) {
	value, err := g.request(ctx, activitiesResource, http.MethodGet, query.params(), nil)
	if err != nil {
		return nil, wrapError(err, CodeActivitiesFetch, "Could not fetch activities.")
	}
	return value, nil
}

func (g *ActivityGateway) ActivitiesByExperience(ctx context.Context, experienceType string, query ActivityQuery) (any, error) {
	value, err := g.request(ctx, activitiesResource+"/"+experienceType, http.MethodGet, query.params(), nil)
	if err != nil {
		return nil, wrapError(err, CodeActivityFetch, "Could not fetch activities for experience.").
			WithMetadata(map[string]any{"experience_type": experienceType})
	}
	return value, nil
}

func (g *ActivityGateway) Activity(ctx context.Context, activityID string) (any, error) {
	value, err := g.request(ctx, activitiesResource+"/"+activityID, http.MethodGet, nil, nil)
	if err != nil {
		return nil, wrapError(err, CodeActivityFetch, "Could not fetch activity.").
			WithMetadata(map[string]any{"activity_id": activityID})
	}
	return value, nil
}

// ActivityGPS fetches the GPS track of an activity. The id is appended to
// "gps" without a separator, matching the upstream resource path.
func (g *ActivityGateway) ActivityGPS(ctx context.Context, activityID string) (any, error) {
	value, err := g.request(ctx, activitiesResource+"/gps"+activityID, http.MethodGet, nil, nil)
	if err != nil {
		return nil, wrapError(err, CodeActivityFetch, "Could not fetch activity GPS data.").
			WithMetadata(map[string]any{"activity_id": activityID})
	}
	return value, nil
}

func (g *ActivityGateway) AddActivity(ctx context.Context, activity NewActivity) (any, error) {
	body := Params{
		{Key: "activityType", Value: activity.ActivityType},
		{Key: "deviceType", Value: activity.DeviceType},
		{Key: "startTime", Value: activity.StartTime},
		{Key: "timeZoneName", Value: activity.TimeZoneName},
		{Key: "metrics", Value: activity.Metrics},
	}
	if activity.DeviceName != "" {
		body = body.Set("deviceName", activity.DeviceName)
	}

	value, err := g.request(ctx, activitiesResource, http.MethodPost, body, nil)
	if err != nil {
		return nil, wrapError(err, CodeActivityAdd, "Could not add activity.")
	}
	return value, nil
}
