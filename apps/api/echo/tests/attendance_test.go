package tests

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/classpig/backend/apps/api/echo"
	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/geo"
	"github.com/classpig/backend/testutil"
)

type checkInBody struct {
	ClassID   int      `json:"class_id"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Reward    int      `json:"reward,omitempty"`
}

func checkInAt(classID int, c geo.Coordinate) checkInBody {
	return checkInBody{ClassID: classID, Latitude: &c.Lat, Longitude: &c.Lon}
}

// metersNorth returns the coordinate `m` meters north of `c`.
func metersNorth(c geo.Coordinate, m float64) geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat + m/(geo.EarthRadiusMeters*math.Pi/180), Lon: c.Lon}
}

func Test_attendanceApi_checkIn(t *testing.T) {
	app := setup(t)
	piglet := testutil.CreateUser(t, usrRepo, "piglet", "truffle-hunter")
	hamlet := testutil.CreateUser(t, usrRepo, "hamlet", "truffle-hunter")
	now := time.Now()
	startNow := testutil.StartTimeAt(now)

	algo := testutil.CreateClass(t, clsRepo, piglet.ID, "Algorithms", "Gates", startNow)
	later := testutil.CreateClass(t, clsRepo, piglet.ID, "Systems", "Gates", testutil.StartTimeAt(now.Add(2*time.Hour)))
	mystery := testutil.CreateClass(t, clsRepo, piglet.ID, "Mystery", "Atlantis", startNow)
	poetry := testutil.CreateClass(t, clsRepo, hamlet.ID, "Poetry", "Gates", startNow)
	token := getToken(t, piglet)

	post := func(body interface{}) *httptest.ResponseRecorder {
		req, rec := newAuthRequest(http.MethodPost, "/api/attendance", token, marchallObj(t, body))
		app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/attendance", marchallObj(t, checkInAt(algo.ID, gates)))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("coordinates required", func(t *testing.T) {
		rec := post(checkInBody{ClassID: algo.ID})
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"latitude":  "this field is required",
				"longitude": "this field is required",
			}),
		}, rec)
	})

	t.Run("class not found", func(t *testing.T) {
		for _, id := range []int{999, poetry.ID} {
			rec := post(checkInAt(id, gates))
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusNotFound,
				wantData: marchallObj(t, map[string]string{"error": "class not found", "reason": "not_found"}),
			}, rec)
		}
	})

	t.Run("outside window", func(t *testing.T) {
		rec := post(checkInAt(later.ID, gates))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, map[string]string{
				"error":  "class check-in window closed (must be within 30 minutes of start time)",
				"reason": "outside_window",
			}),
		}, rec)
	})

	t.Run("unknown location", func(t *testing.T) {
		rec := post(checkInAt(mystery.ID, gates))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnprocessableEntity,
			wantData: marchallObj(t, map[string]string{
				"error":  `no coordinates for building "Atlantis"`,
				"reason": "unknown_location",
			}),
		}, rec)
	})

	t.Run("too far", func(t *testing.T) {
		rec := post(checkInAt(algo.ID, metersNorth(gates, 1000)))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, map[string]interface{}{
				"error":    "too far from class location (1000m)",
				"reason":   "too_far",
				"distance": 1000,
			}),
		}, rec)
	})

	var first CheckInResponse
	t.Run("accepted", func(t *testing.T) {
		body := checkInAt(algo.ID, metersNorth(gates, 250))
		body.Reward = 1000 // ignored
		rec := post(body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		decode(t, rec, &first)
		assert.True(t, first.Success)
		assert.GreaterOrEqual(t, first.Reward, attendance.MinReward)
		assert.LessOrEqual(t, first.Reward, attendance.MaxReward)
		assert.Equal(t, first.Reward, first.TotalRewards)
		assert.Equal(t, first.Reward, first.Attendance.Reward)
		assert.Equal(t, algo.ID, first.Attendance.ClassID)
		assert.Equal(t, piglet.ID, first.Attendance.UserID)
	})

	t.Run("cooldown", func(t *testing.T) {
		rec := post(checkInAt(algo.ID, gates))
		require.Equal(t, http.StatusTooManyRequests, rec.Code, rec.Body.String())

		var resp struct {
			Error   string    `json:"error"`
			Reason  string    `json:"reason"`
			RetryAt time.Time `json:"retry_at"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "cooldown", resp.Reason)
		assert.True(t, resp.RetryAt.Equal(first.Attendance.AttendedAt.Add(23*time.Hour)), resp.RetryAt)
		assert.Contains(t, resp.Error, "already checked in within the last 23 hours, try again after ")
	})

	t.Run("history and rewards", func(t *testing.T) {
		runHTTPTests(t, app, []httpTest{
			{
				name: "history", path: "/api/attendance", token: token,
				wantCode: http.StatusOK, wantData: marchallObj(t, []attendance.Attendance{first.Attendance}),
			},
			{
				name: "rewards", path: "/api/rewards", token: token,
				wantCode: http.StatusOK, wantData: marchallObj(t, RewardsResponse{TotalRewards: first.Reward}),
			},
			{
				name: "no rewards yet", path: "/api/rewards", token: getToken(t, hamlet),
				wantCode: http.StatusOK, wantData: marchallObj(t, RewardsResponse{TotalRewards: 0}),
			},
			{
				name: "no history yet", path: "/api/attendance", token: getToken(t, hamlet),
				wantCode: http.StatusOK, wantData: []byte(`[]`),
			},
		})
	})
}
