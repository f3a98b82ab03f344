package resolve

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	linuxModules    = "/opt/resolve/Developer/Scripting/Modules"
	linuxAltModules = "/home/resolve/Developer/Scripting/Modules"
	macModules      = "/Library/Application Support/Blackmagic Design/DaVinci Resolve/Developer/Scripting/Modules"
	winModules      = `Blackmagic Design\DaVinci Resolve\Support\Developer\Scripting\Modules`

	linuxLib = "/opt/resolve/libs/Fusion/fusionscript.so"
	macLib   = "/Applications/DaVinci Resolve/DaVinci Resolve.app/Contents/Libraries/Fusion/fusionscript.so"
	winLib   = `C:\Program Files\Blackmagic Design\DaVinci Resolve\fusionscript.dll`
)

// DefaultModulesPath returns where the DaVinciResolveScript module lives on this machine.
func DefaultModulesPath() string {
	return modulesPath(runtime.GOOS, os.Getenv, exists)
}

func modulesPath(goos string, getenv func(string) string, exists func(string) bool) string {
	switch goos {
	case "windows":
		return filepath.Join(getenv("PROGRAMDATA"), winModules)
	case "darwin":
		return macModules
	default:
		if exists(linuxModules) {
			return linuxModules
		}
		return linuxAltModules
	}
}

func defaultLibrary(goos string) string {
	switch goos {
	case "windows":
		return winLib
	case "darwin":
		return macLib
	default:
		return linuxLib
	}
}

// scriptEnv returns the variables the Resolve module reads to find the
// scripting API and its native library. Values already set are kept.
func scriptEnv(goos, modules string, getenv func(string) string) []string {
	var env []string
	if getenv("RESOLVE_SCRIPT_API") == "" {
		env = append(env, "RESOLVE_SCRIPT_API="+filepath.Dir(modules))
	}
	if getenv("RESOLVE_SCRIPT_LIB") == "" {
		env = append(env, "RESOLVE_SCRIPT_LIB="+defaultLibrary(goos))
	}
	pythonPath := modules
	if existing := getenv("PYTHONPATH"); existing != "" {
		pythonPath = existing + string(os.PathListSeparator) + modules
	}
	return append(env, "PYTHONPATH="+pythonPath)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
