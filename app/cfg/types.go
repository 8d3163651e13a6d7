package cfg

type Cfg struct {
	// Pipeline configuration
	ConfigPath string
	StatePath  string
	OutputDir  string
	TasksDir   string

	// Application configuration
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
