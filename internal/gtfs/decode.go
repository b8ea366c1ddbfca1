package gtfs

import (
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"subwayroute.dev/engine/internal/models"
)

// decodeFeed unmarshals a GTFS-realtime FeedMessage.
func decodeFeed(body []byte) (*models.Feed, error) {
	var msg gtfsrt.FeedMessage
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, err
	}

	feed := &models.Feed{Entities: make([]models.FeedEntity, 0, len(msg.GetEntity()))}
	if ts := msg.GetHeader().GetTimestamp(); ts > 0 {
		feed.Timestamp = time.Unix(int64(ts), 0).UTC()
	}

	for _, e := range msg.GetEntity() {
		entity := models.FeedEntity{ID: e.GetId()}
		if tu := e.GetTripUpdate(); tu != nil {
			entity.TripUpdate = convertTripUpdate(tu)
		}
		if a := e.GetAlert(); a != nil {
			entity.Alert = convertAlert(a)
		}
		feed.Entities = append(feed.Entities, entity)
	}
	return feed, nil
}

func convertTripUpdate(tu *gtfsrt.TripUpdate) *models.TripUpdate {
	trip := &models.TripUpdate{
		TripID:          tu.GetTrip().GetTripId(),
		RouteID:         tu.GetTrip().GetRouteId(),
		StopTimeUpdates: make([]models.StopTimeUpdate, 0, len(tu.GetStopTimeUpdate())),
	}

	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.GetScheduleRelationship() == gtfsrt.TripUpdate_StopTimeUpdate_SKIPPED {
			continue
		}
		update := models.StopTimeUpdate{
			StopID:   stu.GetStopId(),
			Sequence: stu.GetStopSequence(),
		}
		if arr := stu.GetArrival(); arr != nil {
			if arr.Time != nil {
				update.Arrival = proto.Int64(arr.GetTime())
			}
			if arr.Delay != nil {
				update.Delay = proto.Int32(arr.GetDelay())
			}
		}
		if dep := stu.GetDeparture(); dep != nil {
			if dep.Time != nil {
				update.Departure = proto.Int64(dep.GetTime())
			}
			if dep.Delay != nil {
				update.Delay = proto.Int32(dep.GetDelay())
			}
		}
		trip.StopTimeUpdates = append(trip.StopTimeUpdates, update)
	}
	return trip
}

func convertAlert(a *gtfsrt.Alert) *models.Alert {
	alert := &models.Alert{
		Header:      firstTranslation(a.GetHeaderText()),
		Description: firstTranslation(a.GetDescriptionText()),
	}
	for _, ie := range a.GetInformedEntity() {
		if id := ie.GetRouteId(); id != "" {
			alert.RouteIDs = append(alert.RouteIDs, id)
		}
	}
	return alert
}

func firstTranslation(ts *gtfsrt.TranslatedString) string {
	for _, t := range ts.GetTranslation() {
		if t.GetLanguage() == "" || t.GetLanguage() == "en" {
			return t.GetText()
		}
	}
	if tr := ts.GetTranslation(); len(tr) > 0 {
		return tr[0].GetText()
	}
	return ""
}
