//go:build windows

package startup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/pkg/errors"
)

// ShortcutManager creates a .lnk in the user's Startup folder
type ShortcutManager struct {
	path string
	exe  string
}

func newPlatformManager(exe string) (Manager, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return nil, errors.New("APPDATA is not set")
	}
	return &ShortcutManager{
		path: filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", "Startup", appName+".lnk"),
		exe:  exe,
	}, nil
}

func (m *ShortcutManager) Enabled() (bool, error) {
	_, err := os.Stat(m.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to check startup shortcut")
}

func (m *ShortcutManager) Enable(args []string) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create Startup folder")
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return errors.Wrap(err, "CoInitializeEx failed")
	}
	defer ole.CoUninitialize()

	shellObj, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return errors.Wrap(err, "CreateObject(WScript.Shell) failed")
	}
	defer shellObj.Release()

	shell, err := shellObj.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return errors.Wrap(err, "QueryInterface IDispatch failed")
	}
	defer shell.Release()

	scV, err := oleutil.CallMethod(shell, "CreateShortcut", m.path)
	if err != nil {
		return errors.Wrap(err, "CreateShortcut failed")
	}
	sc := scV.ToIDispatch()
	defer sc.Release()

	if _, err := oleutil.PutProperty(sc, "TargetPath", m.exe); err != nil {
		return errors.Wrap(err, "set TargetPath failed")
	}
	if len(args) > 0 {
		if _, err := oleutil.PutProperty(sc, "Arguments", strings.Join(args, " ")); err != nil {
			return errors.Wrap(err, "set Arguments failed")
		}
	}
	_, _ = oleutil.PutProperty(sc, "WorkingDirectory", filepath.Dir(m.exe))
	_, _ = oleutil.PutProperty(sc, "Description", appName)
	_, _ = oleutil.PutProperty(sc, "IconLocation", m.exe)

	if _, err := oleutil.CallMethod(sc, "Save"); err != nil {
		return errors.Wrap(err, "shortcut save failed")
	}
	return nil
}

func (m *ShortcutManager) Disable() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove startup shortcut")
	}
	return nil
}
