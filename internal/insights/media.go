package insights

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/sitegist/sitegist/internal/model"
)

// ErrNoHTTPClient is returned when the media classifier runs without an
// injected HTTP client.
var ErrNoHTTPClient = errors.New("insights: no HTTP client configured for media classifier")

// MediaClassifier extracts metadata from images referenced by the site.
// EXIF tags reveal how a company produces its visual content: the
// editing software, camera gear, and credited authors behind the
// imagery. GPS tags are flagged specially since publishing them is
// usually an oversight.
//
// The classifier fetches image bytes itself, so an HTTP client must be
// injected with SetHTTPClient before the engine runs. Only same-host
// images are fetched.
type MediaClassifier struct {
	// httpClient fetches image bytes. Must be set before Classify.
	httpClient *http.Client

	// maxImageSize caps the bytes read per image.
	maxImageSize int64

	// exifFormats matches the image extensions that can carry EXIF.
	exifFormats *regexp.Regexp
}

// NewMediaClassifier creates a new MediaClassifier.
// SetHTTPClient must be called before use.
func NewMediaClassifier() *MediaClassifier {
	return &MediaClassifier{
		maxImageSize: 5 * 1024 * 1024,
		exifFormats:  regexp.MustCompile(`(?i)\.(jpe?g|tiff?)(?:\?[^"'\s]*)?$`),
	}
}

// Name returns the classifier name.
func (c *MediaClassifier) Name() string {
	return "media"
}

// Category returns the classifier category.
func (c *MediaClassifier) Category() model.Category {
	return model.CategoryVisualContent
}

// SetHTTPClient injects the client used to fetch image bytes.
func (c *MediaClassifier) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Classify fetches same-host images and extracts their EXIF metadata.
func (c *MediaClassifier) Classify(ctx context.Context, src *Source) ([]model.Insight, error) {
	if c.httpClient == nil {
		return nil, ErrNoHTTPClient
	}

	insights := make([]model.Insight, 0)
	processed := make(map[string]bool)

	for _, page := range src.Pages {
		select {
		case <-ctx.Done():
			return insights, ctx.Err()
		default:
		}

		for _, img := range page.Images {
			imgURL := img.Source
			if imgURL == "" || processed[imgURL] {
				continue
			}
			processed[imgURL] = true

			if !c.exifFormats.MatchString(imgURL) {
				continue
			}
			if !c.sameHost(imgURL, src.Host) {
				continue
			}

			insights = append(insights, c.classifyImage(ctx, imgURL, page.URL)...)
		}
	}

	return insights, nil
}

// sameHost reports whether the image URL is on the scraped host.
func (c *MediaClassifier) sameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// classifyImage fetches one image and converts its EXIF tags to insights.
// Fetch and parse failures are silent: most web images carry no EXIF and
// a broken image link is not worth a report entry.
func (c *MediaClassifier) classifyImage(ctx context.Context, imageURL, pageURL string) []model.Insight {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageSize))
	if err != nil {
		return nil
	}

	return c.classifyImageData(data, imageURL, pageURL)
}

// classifyImageData extracts insights from raw image bytes.
func (c *MediaClassifier) classifyImageData(data []byte, imageURL, pageURL string) []model.Insight {
	insights := make([]model.Insight, 0)

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return insights
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return insights
	}

	location := pageURL + " -> " + imageURL

	for _, entry := range entries {
		value := entry.Formatted

		switch entry.TagName {
		// Location data published by accident
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "gps_metadata",
				Title:    "GPS coordinates in published image",
				Detail:   "An image on the site carries GPS EXIF tags. Publishing shoot locations is usually unintended.",
				Value:    entry.TagName + ": " + value,
				Location: location,
			})

		// Production tooling
		case "Software", "ProcessingSoftware":
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "image_software",
				Title:    "Image production software",
				Detail:   "EXIF software tags show the tooling used to produce the site's imagery.",
				Value:    value,
				Location: location,
			})

		// Camera gear suggests original photography over stock assets
		case "Make", "Model":
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "camera_equipment",
				Title:    "Original photography detected",
				Detail:   "Camera EXIF tags suggest the imagery is shot in-house rather than stock.",
				Value:    entry.TagName + ": " + value,
				Location: location,
			})

		// Credited creators
		case "Artist", "Copyright", "XPAuthor":
			insights = append(insights, model.Insight{
				Category: c.Category(),
				Type:     "image_author",
				Title:    "Credited image author",
				Detail:   "EXIF author or copyright tags credit the creator of the site's imagery.",
				Value:    value,
				Location: location,
			})
		}
	}

	return insights
}

// Ensure MediaClassifier implements Classifier and HTTPClientSetter.
var (
	_ Classifier       = (*MediaClassifier)(nil)
	_ HTTPClientSetter = (*MediaClassifier)(nil)
)
