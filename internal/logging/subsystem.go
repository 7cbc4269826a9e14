package logging

// Subsystem identifies the originator of a log message.
type Subsystem uint8

const (
	SubsystemOBC Subsystem = iota
	SubsystemUHFRadio
	SubsystemUmbilicalUART
	SubsystemGNSS
	SubsystemMPI
	SubsystemEPS
	SubsystemBoom
	SubsystemADCS
	SubsystemLFS
	SubsystemFlash
	SubsystemAntennaDeploy
	SubsystemLog
	SubsystemTelecommand
	SubsystemUnitTest
	SubsystemUnknown // Must stay last; used as the fallback/sentinel.
)

var subsystemNames = [...]string{
	SubsystemOBC:           "OBC",
	SubsystemUHFRadio:      "UHF_RADIO",
	SubsystemUmbilicalUART: "UMBILICAL_UART",
	SubsystemGNSS:          "GNSS",
	SubsystemMPI:           "MPI",
	SubsystemEPS:           "EPS",
	SubsystemBoom:          "BOOM",
	SubsystemADCS:          "ADCS",
	SubsystemLFS:           "LFS",
	SubsystemFlash:         "FLASH",
	SubsystemAntennaDeploy: "ANTENNA_DEPLOY",
	SubsystemLog:           "LOG",
	SubsystemTelecommand:   "TELECOMMAND",
	SubsystemUnitTest:      "UNIT_TEST",
	SubsystemUnknown:       "UNKNOWN",
}

var subsystemDefaultFilePaths = [...]string{
	SubsystemOBC:           "/logs/obc_system.log",
	SubsystemUHFRadio:      "/logs/uhf_radio.log",
	SubsystemUmbilicalUART: "/logs/umbilical_uart.log",
	SubsystemGNSS:          "/logs/gnss.log",
	SubsystemMPI:           "/logs/mpi.log",
	SubsystemEPS:           "/logs/eps.log",
	SubsystemBoom:          "/logs/boom.log",
	SubsystemADCS:          "/logs/adcs.log",
	SubsystemLFS:           "/logs/lfs.log",
	SubsystemFlash:         "/logs/flash.log",
	SubsystemAntennaDeploy: "/logs/antenna_deploy.log",
	SubsystemLog:           "/logs/log.log",
	SubsystemTelecommand:   "/logs/telecommand.log",
	SubsystemUnitTest:      "/logs/unit_test.log",
	SubsystemUnknown:       "/logs/unknown.log",
}

// String returns the subsystem's short name, as used in rendered log lines.
func (s Subsystem) String() string {
	if int(s) < len(subsystemNames) {
		return subsystemNames[s]
	}
	return "UNKNOWN"
}

// DefaultFilePath returns the subsystem's default per-subsystem log file
// path. Logger does not open or write this path; log lines reach files
// only through the registered file sink.
func (s Subsystem) DefaultFilePath() string {
	if int(s) < len(subsystemDefaultFilePaths) {
		return subsystemDefaultFilePaths[s]
	}
	return subsystemDefaultFilePaths[SubsystemUnknown]
}

// NumSubsystems returns the number of known subsystems.
func NumSubsystems() int {
	return len(subsystemNames)
}
