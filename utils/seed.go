// api/utils/seed.go
package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"logsight/api/models"
)

var (
	seedPaths = []string{
		"/", "/products", "/products/1", "/products/2", "/cart", "/checkout",
		"/about", "/contact", "/blog", "/blog/post-1", "/blog/post-2",
		"/login", "/register", "/profile", "/settings", "/orders",
		"/orders/123", "/search", "/faq", "/pricing",
	}
	seedMethods     = []string{"GET", "POST", "PUT", "DELETE"}
	seedStatusCodes = []int32{200, 201, 301, 302, 400, 401, 403, 404, 500}
	seedDevices     = []string{"Desktop", "Mobile", "Tablet"}
	seedBrowsers    = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}
	seedOSes        = []string{"Windows", "macOS", "Linux", "iOS", "Android"}
	seedCountries   = []string{"China", "USA", "Japan", "UK", "Germany", "France"}
	seedCities      = []string{"Beijing", "Shanghai", "New York", "Tokyo", "London", "Paris"}
)

// GenerateSeedLogs produces synthetic but valid access log records for
// demoing the dashboard: sessionCount sessions of 3-12 steps each,
// starting at random points within the trailing 7 days, with 10s-5min
// gaps between steps. The first request of a session is always a GET,
// and GETs always succeed.
func GenerateSeedLogs(sessionCount int) []models.AccessLog {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var logs []models.AccessLog
	for i := 0; i < sessionCount; i++ {
		sessionID := "session_" + uuid.New().String()
		stepCount := rng.Intn(10) + 3
		device := seedDevices[rng.Intn(len(seedDevices))]
		browser := seedBrowsers[rng.Intn(len(seedBrowsers))]
		osName := seedOSes[rng.Intn(len(seedOSes))]
		country := seedCountries[rng.Intn(len(seedCountries))]
		city := seedCities[rng.Intn(len(seedCities))]
		ipAddress := fmt.Sprintf("%d.%d.%d.%d",
			rng.Intn(256), rng.Intn(256), rng.Intn(256), rng.Intn(256))
		userAgent := fmt.Sprintf("%s/%d %s/%d",
			browser, rng.Intn(100)+1, osName, rng.Intn(10)+1)

		current := time.Now().UTC().Add(-time.Duration(rng.Int63n(int64(7 * 24 * time.Hour))))

		for j := 0; j < stepCount; j++ {
			method := "GET"
			if j > 0 {
				method = seedMethods[rng.Intn(len(seedMethods))]
			}
			statusCode := int32(200)
			if method != "GET" {
				statusCode = seedStatusCodes[rng.Intn(len(seedStatusCodes))]
			}
			responseTime := int64(rng.Intn(500) + 10)

			rec := models.AccessLog{
				ID:           uuid.New().String(),
				SessionID:    sessionID,
				Path:         seedPaths[rng.Intn(len(seedPaths))],
				Method:       method,
				StatusCode:   statusCode,
				ResponseTime: &responseTime,
				IPAddress:    &ipAddress,
				UserAgent:    &userAgent,
				Device:       &device,
				Browser:      &browser,
				OS:           &osName,
				Country:      &country,
				City:         &city,
				CreatedAt:    current,
			}
			if rng.Float64() > 0.5 {
				userID := fmt.Sprintf("user_%d", rng.Intn(100))
				rec.UserID = &userID
			}
			if j > 0 {
				referer := seedPaths[rng.Intn(len(seedPaths))]
				rec.Referer = &referer
			}
			logs = append(logs, rec)

			// Next request lands 10 seconds to 5 minutes later.
			current = current.Add(time.Duration(rng.Float64()*290+10) * time.Second)
		}
	}
	return logs
}
