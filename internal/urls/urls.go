package urls

// APIBase is the root of the vendor's appliance control API
const APIBase = "https://hms.cloudlabs.sharp.co.jp/hems/pfApi/ta"

// TerminalAppIDPrefix is prepended to the app key to form the terminal
// application ID sent at login and as the box ID of control requests.
const TerminalAppIDPrefix = "https://db.cloudlabs.sharp.co.jp/clpf/key/"

// ServiceName is the service the mobile app logs in to
const ServiceName = "iClub"

// UserAgent mimics the vendor's mobile app. The API rejects unknown agents.
const UserAgent = "smartlink_v200i Mozilla/5.0 (iPad; CPU OS 14_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148"

// API paths relative to APIBase
const (
	PathLogin          = "/setting/login/"
	PathBoxInfo        = "/setting/boxInfo/"
	PathDeviceProperty = "/control/deviceProperty"
	PathDeviceControl  = "/control/deviceControl"
)

// TerminalAppID returns the terminal application ID for an app key
func TerminalAppID(appKey string) string {
	return TerminalAppIDPrefix + appKey
}
