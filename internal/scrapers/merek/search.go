package merek

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"merek-automation/pkg/htmlutil"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// SearchField names a column the application list can be filtered on.
type SearchField string

const (
	SEARCH_APPLICATION_DATE SearchField = "applicationDate"
	SEARCH_APPLICATION_NO   SearchField = "applicationNoOnline"
	SEARCH_EFILING_NO       SearchField = "eFilingNo"
	SEARCH_BRAND_NAME       SearchField = "brandName"
	SEARCH_FILE_TYPE        SearchField = "fileTypeDetailId"
	SEARCH_CLASS_LIST       SearchField = "classList"
	SEARCH_BANK_CODE        SearchField = "bankCode"
)

// searchFields is the order the list endpoint declares its searchable fields in,
// keywords are matched to fields by position.
var searchFields = []SearchField{
	SEARCH_APPLICATION_DATE,
	SEARCH_APPLICATION_NO,
	SEARCH_EFILING_NO,
	SEARCH_BRAND_NAME,
	SEARCH_FILE_TYPE,
	SEARCH_CLASS_LIST,
	SEARCH_BANK_CODE,
}

// searchFieldCount is how many searchable fields the portal declares.
const searchFieldCount = 7

// the list is always sorted by submission date, newest first
const (
	searchOrderColumn    = 2
	searchOrderDirection = "desc"
)

// summaryColumnCount is how many cells a row of the application list has.
const summaryColumnCount = 13

func ParseSearchField(name string) (SearchField, bool) {
	for _, field := range searchFields {
		if string(field) == name {
			return field, true
		}
	}
	return "", false
}

type ApplicationListQuery struct {
	Page     int
	PageSize int
	Filters  map[SearchField]string
}

type ApplicationSummary struct {
	No                string `json:"no"`
	TransactionNo     string `json:"nomor_transaksi"`
	SubmittedAt       string `json:"tanggal_pengajuan"`
	BrandType         string `json:"tipe_merek"`
	Brand             string `json:"merek"`
	Classes           string `json:"kelas"`
	ApplicationNo     string `json:"nomor_permohonan"`
	ApplicationType   string `json:"tipe_permohonan"`
	ApplicantCategory string `json:"jenis_permohonan"`
	Status            string `json:"status"`
	BillingCode       string `json:"kode_billing"`
	PaymentStatus     string `json:"status_pembayaran"`
	Actions           string `json:"actions"`
}

type ApplicationListResult struct {
	TotalRecords    int                  `json:"total_records"`
	FilteredRecords int                  `json:"filtered_records"`
	Rows            []ApplicationSummary `json:"rows"`
}

// searchRequest is the tabular data protocol's request, flattened into the order
// the fields are sent in.
type searchRequest struct {
	Draw     int
	Start    int
	Length   int
	Fields   []SearchField
	Keywords []string
}

func (r searchRequest) form() [][2]string {
	form := [][2]string{
		{"draw", strconv.Itoa(r.Draw)},
		{"start", strconv.Itoa(r.Start)},
		{"length", strconv.Itoa(r.Length)},
		{"order[0][column]", strconv.Itoa(searchOrderColumn)},
		{"order[0][dir]", searchOrderDirection},
	}
	for i, field := range r.Fields {
		form = append(form,
			[2]string{"searchField[]", string(field)},
			[2]string{"keyword[]", r.Keywords[i]},
		)
	}
	return form
}

func buildSearchRequest(query ApplicationListQuery) (searchRequest, error) {
	if len(searchFields) != searchFieldCount {
		return searchRequest{}, fmt.Errorf(
			"search field table has %d fields, the portal declares %d",
			len(searchFields), searchFieldCount,
		)
	}
	if query.Page < 1 {
		return searchRequest{}, validationFailed("page must be at least 1")
	}
	if query.PageSize < 1 {
		return searchRequest{}, validationFailed("page size must be at least 1")
	}

	unknown := []string{}
	for field := range query.Filters {
		if _, ok := ParseSearchField(string(field)); !ok {
			unknown = append(unknown, string(field))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return searchRequest{}, validationFailed(fmt.Sprintf("unknown search fields: %s", strings.Join(unknown, ", ")))
	}

	keywords := make([]string, len(searchFields))
	for i, field := range searchFields {
		keywords[i] = query.Filters[field]
	}

	return searchRequest{
		Draw:     query.Page,
		Start:    (query.Page - 1) * query.PageSize,
		Length:   query.PageSize,
		Fields:   searchFields,
		Keywords: keywords,
	}, nil
}

func summaryFromCells(cells []string) ApplicationSummary {
	return ApplicationSummary{
		No:                htmlutil.CleanText(cells[0]),
		TransactionNo:     htmlutil.FragmentText(cells[1]),
		SubmittedAt:       htmlutil.CleanText(cells[2]),
		BrandType:         htmlutil.CleanText(cells[3]),
		Brand:             htmlutil.CleanText(cells[4]),
		Classes:           htmlutil.CleanText(cells[5]),
		ApplicationNo:     htmlutil.CleanText(cells[6]),
		ApplicationType:   htmlutil.CleanText(cells[7]),
		ApplicantCategory: htmlutil.CleanText(cells[8]),
		Status:            htmlutil.CleanText(cells[9]),
		BillingCode:       htmlutil.CleanText(cells[10]),
		PaymentStatus:     htmlutil.CleanText(cells[11]),
		Actions:           htmlutil.AnchorText(cells[12]),
	}
}

// summaryKeys are the keys of a row when the portal sends rows as objects instead
// of arrays, in column order.
var summaryKeys = []string{
	"no",
	"nomor_transaksi",
	"tanggal_pengajuan",
	"tipe_merek",
	"merek",
	"kelas",
	"nomor_permohonan",
	"tipe_permohonan",
	"jenis_permohonan",
	"status",
	"kode_billing",
	"status_pembayaran",
	"actions",
}

func rowCells(row gjson.Result) ([]string, bool) {
	if row.IsObject() {
		cells := make([]string, len(summaryKeys))
		for i, key := range summaryKeys {
			cells[i] = row.Get(key).String()
		}
		return cells, true
	}
	if !row.IsArray() {
		return nil, false
	}
	values := row.Array()
	if len(values) < summaryColumnCount {
		return nil, false
	}
	cells := make([]string, len(values))
	for i, value := range values {
		cells[i] = value.String()
	}
	return cells, true
}

func parseApplicationList(body []byte) (ApplicationListResult, error) {
	if !gjson.ValidBytes(body) {
		return ApplicationListResult{}, &ParseError{Page: "application list", Missing: "json body"}
	}
	parsed := gjson.ParseBytes(body)
	data := parsed.Get("data")
	if !data.IsArray() {
		return ApplicationListResult{}, &ParseError{Page: "application list", Missing: "data rows"}
	}

	rows := []ApplicationSummary{}
	for i, row := range data.Array() {
		cells, ok := rowCells(row)
		if !ok {
			return ApplicationListResult{}, &ParseError{
				Page:    "application list",
				Missing: fmt.Sprintf("%d cells in row %d", summaryColumnCount, i),
			}
		}
		rows = append(rows, summaryFromCells(cells))
	}

	return ApplicationListResult{
		TotalRecords:    int(parsed.Get("recordsTotal").Int()),
		FilteredRecords: int(parsed.Get("recordsFiltered").Int()),
		Rows:            rows,
	}, nil
}

func (c *client) searchApplications(
	ctx context.Context,
	session Session,
	query ApplicationListQuery,
) (ApplicationListResult, Session, error) {
	search, err := buildSearchRequest(query)
	if err != nil {
		return ApplicationListResult{}, session, err
	}

	token, err := c.fetchToken(ctx, session, c.endpoints.ApplicationPage, nil, c.listPageTokens)
	if err != nil {
		return ApplicationListResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		req := c.authorized(ctx, session, token)
		for _, pair := range search.form() {
			req.FormData.Add(pair[0], pair[1])
		}
		return req.Post(c.endpoints.ApplicationData)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return ApplicationListResult{}, session, err
	}

	result, err := parseApplicationList(res.Body)
	if err != nil {
		return ApplicationListResult{}, session, upstreamError(err)
	}
	return result, session.WithToken(token), nil
}
