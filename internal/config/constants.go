package config

// Lua schema field names and globals
const (
	luaGlobalWhapbot = "whapbot"
	luaFieldRoot     = "root"
	luaFieldDrivers  = "drivers"
	luaFieldFeeds    = "feeds"
	luaFieldBrowser  = "browser"
	luaFieldVersion  = "version"
)

const (
	// DefaultRoot is the driver directory used when the config names none.
	DefaultRoot = "drivers"
	// DefaultVersion is the version policy of entries without a version.
	DefaultVersion = "latest"
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = "whapbot.lua"

	maxConfigSize = 1 << 20
)
