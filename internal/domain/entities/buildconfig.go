package entities

// BuildConfig mirrors the build_<tag>.cfg file written after synthesis setup.
// The report and packaging tools consume it to locate the build area.
type BuildConfig struct {
	Environment BuildEnvironment
	Menu        BuildMenu
	IPBB        BuildIPBB
	Vivado      BuildVivado
	Firmware    BuildFirmware
	Device      BuildDevice
}

// BuildEnvironment records where and by whom the build was started
type BuildEnvironment struct {
	Timestamp string
	Hostname  string
	Username  string
}

// BuildMenu records the menu the build was generated from
type BuildMenu struct {
	Build    string // normalized tag, no 0x prefix
	Name     string
	Location string
	Modules  int
}

// BuildIPBB records the ipbb version used
type BuildIPBB struct {
	Version string
}

// BuildVivado records the Vivado version used
type BuildVivado struct {
	Version string
}

// BuildFirmware records the source repositories and the build area
type BuildFirmware struct {
	IPBURL    string
	IPBTag    string
	MP7URL    string
	MP7Tag    string
	UgtURL    string
	UgtTag    string
	Type      string
	BuildArea string
}

// BuildDevice records the target board
type BuildDevice struct {
	Type  string
	Name  string
	Alias string
}
