package cocoro

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const (
	testSecret    = "test-secret"
	testKey       = "testkey123"
	sessionCookie = "JSESSIONID"
	airconDetail  = "0100A003C0FFEE00112233445566778899AABBCCDDEEFF01020304"
)

const mockBoxesResponse = `{"box":[
	{"boxId":"box-1","echonetData":[{"maker":"SHARP","model":"AY-L40P","serialNumber":"SN1","deviceId":1001,"echonetNode":"0x0000","echonetObject":"013001","labelData":{"name":"Living room"}}]},
	{"boxId":"box-empty","echonetData":[]}
]}`

var mockProperties = []wireProperty{
	{StatusCode: "80", StatusName: "power", ValueType: "valueSingle", Get: true, Set: true,
		ValueSingle: []singleOption{{Code: "30", Name: "ON"}, {Code: "31", Name: "OFF"}}},
	{StatusCode: "B0", StatusName: "operation mode", ValueType: "valueSingle", Get: true, Set: true},
	{StatusCode: "A0", StatusName: "windspeed", ValueType: "valueSingle", Get: true, Set: true},
	{StatusCode: "BB", StatusName: "room temperature", ValueType: "valueRange", Get: true,
		ValueRange: &rangeSpec{Min: -10, Max: 50, Step: 1}},
	{StatusCode: "F1", StatusName: "state detail", ValueType: "valueBinary", Get: true, Set: true,
		ValueBinary: &binarySpec{Size: 27}},
}

func mockStatuses() []wireStatus {
	return []wireStatus{
		{StatusCode: "80", ValueType: "valueSingle", ValueSingle: &valueCode{Code: "31"}},
		{StatusCode: "B0", ValueType: "valueSingle", ValueSingle: &valueCode{Code: "42"}},
		{StatusCode: "A0", ValueType: "valueSingle", ValueSingle: &valueCode{Code: "41"}},
		{StatusCode: "BB", ValueType: "valueRange", ValueRange: &valueCode{Code: "024"}},
		{StatusCode: "F1", ValueType: "valueBinary", ValueBinary: &valueCode{Code: airconDetail}},
	}
}

// fakeCloud mimics the vendor API: a cookie session set at login, a box
// list, a property query and a control endpoint that applies submitted
// values to the reported status.
type fakeCloud struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	logins         int
	requests       map[string]int
	controls       []controlRequest
	statuses       []wireStatus
	ignoreControls bool // accept control requests without applying them
	reject401      int  // reject this many authenticated requests with 401
	fail500        int  // fail this many requests with 500
	vendorError    bool // answer control requests with an error body
	session        string
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()
	f := &fakeCloud{
		t:        t,
		requests: make(map[string]int),
		statuses: mockStatuses(),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCloud) client() *Client {
	return NewClient(testSecret, testKey,
		WithBaseURL(f.server.URL),
		WithRetry(2, time.Millisecond))
}

func (f *fakeCloud) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeCloud) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests[r.URL.Path]++

	if r.Header.Get("User-Agent") == "" || r.Header.Get("Content-Type") != "application/json; charset=utf-8" {
		http.Error(w, "bad headers", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("appSecret") != testSecret {
		http.Error(w, "bad secret", http.StatusBadRequest)
		return
	}

	if f.fail500 > 0 {
		f.fail500--
		http.Error(w, "maintenance", http.StatusInternalServerError)
		return
	}

	if r.URL.Path == "/setting/login/" {
		f.login(w, r)
		return
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value != f.session || f.session == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.reject401 > 0 {
		f.reject401--
		f.session = ""
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case "/setting/boxInfo/":
		_, _ = w.Write([]byte(mockBoxesResponse))

	case "/control/deviceProperty":
		if r.URL.Query().Get("boxId") != "box-1" || r.URL.Query().Get("status") != "true" {
			http.Error(w, "unknown box", http.StatusNotFound)
			return
		}
		var resp propertiesResponse
		resp.DeviceProperty.Property = mockProperties
		resp.DeviceProperty.Status = f.statuses
		_ = json.NewEncoder(w).Encode(resp)

	case "/control/deviceControl":
		if r.URL.Query().Get("boxId") != "https://db.cloudlabs.sharp.co.jp/clpf/key/"+testKey {
			http.Error(w, "bad terminal", http.StatusBadRequest)
			return
		}
		var req controlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.controls = append(f.controls, req)
		if f.vendorError {
			_, _ = w.Write([]byte(`{"errorCode":"E0021","errorMessage":"device offline"}`))
			return
		}
		if !f.ignoreControls {
			f.apply(req)
		}
		_, _ = w.Write([]byte(`{"controlList":[{"status":"success"}]}`))

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeCloud) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.TerminalAppID != "https://db.cloudlabs.sharp.co.jp/clpf/key/"+testKey ||
		r.URL.Query().Get("serviceName") != "iClub" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.logins++
	f.session = "session-" + string(rune('a'+f.logins))
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: f.session, Path: "/"})
	_, _ = w.Write([]byte(`{}`))
}

func (f *fakeCloud) apply(req controlRequest) {
	for _, entry := range req.ControlList {
		for _, s := range entry.Status {
			if s.ValueType == "valueBinary" {
				continue
			}
			for i := range f.statuses {
				if f.statuses[i].StatusCode == s.StatusCode {
					f.statuses[i] = s
				}
			}
		}
	}
}

func (f *fakeCloud) setStatus(code, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.statuses {
		if f.statuses[i].StatusCode == code && f.statuses[i].ValueSingle != nil {
			f.statuses[i].ValueSingle = &valueCode{Code: value}
		}
	}
}
