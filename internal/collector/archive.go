package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"KeplerLens/internal/cleaner"
	"KeplerLens/internal/model"
)

// DefaultArchiveURL is the root of the MAST Kepler light-curve tree.
const DefaultArchiveURL = "https://archive.stsci.edu/missions/kepler/lightcurves"

// ProductDecoder turns a downloaded data product into a light curve.
type ProductDecoder func(r io.Reader) (*model.LightCurve, error)

// Product is one downloadable light-curve file.
type Product struct {
	Name      string
	URL       string
	Timestamp string
	Quarter   int
}

// ArchiveFetcher implements Fetcher against the Kepler archive: it searches
// the star's directory, downloads the matching long-cadence products, and
// stitches them.
type ArchiveFetcher struct {
	BaseURL string
	Client  *http.Client
	Decode  ProductDecoder
}

// NewArchiveFetcher creates a fetcher with optional proxy support.
func NewArchiveFetcher(baseURL, proxyURL string, timeout time.Duration) *ArchiveFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	return &ArchiveFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Decode: DecodeFITS,
	}
}

func (f *ArchiveFetcher) Name() string { return "archive" }

var productPattern = regexp.MustCompile(`kplr(\d{9})-(\d{13})_llc\.fits`)

func (f *ArchiveFetcher) starURL(star model.StarIdentifier) string {
	kic := star.KIC()
	return fmt.Sprintf("%s/%s/%s/", f.BaseURL, kic[:4], kic)
}

// Search lists the long-cadence products for the query's star, restricted to
// the query's quarter when one is set. Products are ordered by timestamp.
func (f *ArchiveFetcher) Search(ctx context.Context, q model.Query) ([]Product, error) {
	if q.Star.CatalogID <= 0 {
		return nil, errors.Wrapf(model.ErrInvalidParameter, "catalog id must be positive, got %d", q.Star.CatalogID)
	}
	dirURL := f.starURL(q.Star)
	body, status, err := f.get(ctx, dirURL)
	if err != nil {
		return nil, errors.Wrap(err, "search archive")
	}
	if status == http.StatusNotFound {
		return nil, errors.Wrapf(model.ErrNotFound, "KIC %d", q.Star.CatalogID)
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("search archive: status %d, body: %s", status, string(body))
	}

	seen := make(map[string]struct{})
	var products []Product
	for _, m := range productPattern.FindAllStringSubmatch(string(body), -1) {
		name, kic, stamp := m[0], m[1], m[2]
		if kic != q.Star.KIC() {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		quarter := QuarterOf(stamp)
		if q.HasQuarter() && quarter != q.Quarter {
			continue
		}
		products = append(products, Product{
			Name:      name,
			URL:       dirURL + name,
			Timestamp: stamp,
			Quarter:   quarter,
		})
	}
	if len(products) == 0 {
		if q.HasQuarter() {
			return nil, errors.Wrapf(model.ErrNotFound, "KIC %d, quarter %d", q.Star.CatalogID, q.Quarter)
		}
		return nil, errors.Wrapf(model.ErrNotFound, "KIC %d", q.Star.CatalogID)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Timestamp < products[j].Timestamp })
	return products, nil
}

// Download retrieves and decodes one product.
func (f *ArchiveFetcher) Download(ctx context.Context, p Product) (*model.LightCurve, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", p.Name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("download %s: status %d, body: %s", p.Name, resp.StatusCode, string(body))
	}
	lc, err := f.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", p.Name)
	}
	return lc, nil
}

// Fetch searches, downloads, and stitches. With q.FirstOnly only the first
// product is downloaded; it is still normalised like a stitched curve.
func (f *ArchiveFetcher) Fetch(ctx context.Context, q model.Query) (*model.LightCurve, error) {
	products, err := f.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.FirstOnly {
		products = products[:1]
	}
	log.Printf("[INFO] KIC %d: downloading %d data product(s)", q.Star.CatalogID, len(products))

	curves := make([]*model.LightCurve, 0, len(products))
	for _, p := range products {
		lc, err := f.Download(ctx, p)
		if err != nil {
			return nil, err
		}
		curves = append(curves, lc)
	}
	return Stitch(curves...)
}

// Stitch normalises every curve by its own median flux, then concatenates
// them in time order. Curves that cannot be normalised (no finite flux) are
// skipped.
func Stitch(curves ...*model.LightCurve) (*model.LightCurve, error) {
	normalised := make([]*model.LightCurve, 0, len(curves))
	for i, c := range curves {
		if c.IsEmpty() {
			continue
		}
		n, err := cleaner.Normalize(c)
		if err != nil {
			if errors.Is(err, model.ErrInvalidInput) {
				log.Printf("[WARN] stitch: skipping product %d: %v", i, err)
				continue
			}
			return nil, err
		}
		normalised = append(normalised, n)
	}
	return model.Append(normalised...), nil
}

func (f *ArchiveFetcher) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "read body")
	}
	return body, resp.StatusCode, nil
}
