package gtfs

import (
	"testing"
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

type fixtureStop struct {
	id        string
	seq       uint32
	arrival   int64
	departure int64
	skipped   bool
}

func tripEntity(tripID, routeID string, stops ...fixtureStop) *gtfsrt.FeedEntity {
	updates := make([]*gtfsrt.TripUpdate_StopTimeUpdate, 0, len(stops))
	for _, s := range stops {
		u := &gtfsrt.TripUpdate_StopTimeUpdate{
			StopId:       proto.String(s.id),
			StopSequence: proto.Uint32(s.seq),
		}
		if s.arrival != 0 {
			u.Arrival = &gtfsrt.TripUpdate_StopTimeEvent{Time: proto.Int64(s.arrival)}
		}
		if s.departure != 0 {
			u.Departure = &gtfsrt.TripUpdate_StopTimeEvent{Time: proto.Int64(s.departure), Delay: proto.Int32(30)}
		}
		if s.skipped {
			rel := gtfsrt.TripUpdate_StopTimeUpdate_SKIPPED
			u.ScheduleRelationship = &rel
		}
		updates = append(updates, u)
	}

	return &gtfsrt.FeedEntity{
		Id: proto.String(tripID),
		TripUpdate: &gtfsrt.TripUpdate{
			Trip: &gtfsrt.TripDescriptor{
				TripId:  proto.String(tripID),
				RouteId: proto.String(routeID),
			},
			StopTimeUpdate: updates,
		},
	}
}

func alertEntity(id, header string, routes ...string) *gtfsrt.FeedEntity {
	informed := make([]*gtfsrt.EntitySelector, 0, len(routes))
	for _, r := range routes {
		informed = append(informed, &gtfsrt.EntitySelector{RouteId: proto.String(r)})
	}
	return &gtfsrt.FeedEntity{
		Id: proto.String(id),
		Alert: &gtfsrt.Alert{
			InformedEntity: informed,
			HeaderText: &gtfsrt.TranslatedString{
				Translation: []*gtfsrt.TranslatedString_Translation{{Text: proto.String(header), Language: proto.String("en")}},
			},
		},
	}
}

var fixtureTimestamp = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func feedBytes(t *testing.T, entities ...*gtfsrt.FeedEntity) []byte {
	t.Helper()

	incrementality := gtfsrt.FeedHeader_FULL_DATASET
	msg := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(uint64(fixtureTimestamp.Unix())),
		},
		Entity: entities,
	}

	data, err := proto.Marshal(msg)
	require.NoError(t, err)
	return data
}
