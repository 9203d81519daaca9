//go:build windows

package windows

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dxva2  = windows.NewLazySystemDLL("dxva2.dll")

	procEnumDisplayDevicesW = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")

	procGetNumberOfPhysicalMonitorsFromHMONITOR = dxva2.NewProc("GetNumberOfPhysicalMonitorsFromHMONITOR")
	procGetPhysicalMonitorsFromHMONITOR         = dxva2.NewProc("GetPhysicalMonitorsFromHMONITOR")
	procDestroyPhysicalMonitors                 = dxva2.NewProc("DestroyPhysicalMonitors")
	procSetVCPFeature                           = dxva2.NewProc("SetVCPFeature")
	procGetVCPFeatureAndVCPFeatureReply         = dxva2.NewProc("GetVCPFeatureAndVCPFeatureReply")
)

const (
	displayDeviceAttachedToDesktop = 0x00000001
	displayDevicePrimaryDevice     = 0x00000004
	displayDeviceMirroringDriver   = 0x00000008

	vcpPowerMode = 0xD6
	powerOn      = 0x01
	powerOff     = 0x04
)

type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

type rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type monitorInfoExW struct {
	Size    uint32
	Monitor rect
	Work    rect
	Flags   uint32
	Device  [32]uint16
}

type physicalMonitor struct {
	Handle      windows.Handle
	Description [128]uint16
}

// enumDisplayDevice wraps EnumDisplayDevicesW. parent is empty for adapters.
func enumDisplayDevice(parent string, index uint32) (*displayDevice, bool) {
	dev := &displayDevice{}
	dev.Cb = uint32(unsafe.Sizeof(*dev))

	var parentPtr *uint16
	if parent != "" {
		p, err := windows.UTF16PtrFromString(parent)
		if err != nil {
			return nil, false
		}
		parentPtr = p
	}

	ret, _, _ := procEnumDisplayDevicesW.Call(
		uintptr(unsafe.Pointer(parentPtr)),
		uintptr(index),
		uintptr(unsafe.Pointer(dev)),
		0,
	)
	return dev, ret != 0
}

// hmonitors maps GDI device names (\\.\DISPLAY1) to monitor handles
func hmonitors() map[string]uintptr {
	handles := make(map[string]uintptr)

	cb := windows.NewCallback(func(hMonitor, hdc, lprc, data uintptr) uintptr {
		var mi monitorInfoExW
		mi.Size = uint32(unsafe.Sizeof(mi))
		if ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi))); ret != 0 {
			handles[windows.UTF16ToString(mi.Device[:])] = hMonitor
		}
		return 1
	})

	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	return handles
}

// withPhysicalMonitors opens the physical monitors behind an HMONITOR for the
// duration of fn
func withPhysicalMonitors(hMonitor uintptr, fn func([]physicalMonitor) error) error {
	var count uint32
	ret, _, callErr := procGetNumberOfPhysicalMonitorsFromHMONITOR.Call(hMonitor, uintptr(unsafe.Pointer(&count)))
	if ret == 0 {
		return errors.Wrap(callErr, "GetNumberOfPhysicalMonitorsFromHMONITOR failed")
	}
	if count == 0 {
		return errors.New("no physical monitors")
	}

	monitors := make([]physicalMonitor, count)
	ret, _, callErr = procGetPhysicalMonitorsFromHMONITOR.Call(hMonitor, uintptr(count), uintptr(unsafe.Pointer(&monitors[0])))
	if ret == 0 {
		return errors.Wrap(callErr, "GetPhysicalMonitorsFromHMONITOR failed")
	}
	defer procDestroyPhysicalMonitors.Call(uintptr(count), uintptr(unsafe.Pointer(&monitors[0])))

	return fn(monitors)
}

func supportsPowerMode(handle windows.Handle) bool {
	var current, maximum uint32
	ret, _, _ := procGetVCPFeatureAndVCPFeatureReply.Call(
		uintptr(handle),
		uintptr(vcpPowerMode),
		0,
		uintptr(unsafe.Pointer(&current)),
		uintptr(unsafe.Pointer(&maximum)),
	)
	return ret != 0
}

func setPowerMode(handle windows.Handle, on bool) error {
	value := powerOff
	if on {
		value = powerOn
	}
	ret, _, callErr := procSetVCPFeature.Call(uintptr(handle), uintptr(vcpPowerMode), uintptr(value))
	if ret == 0 {
		return errors.Wrap(callErr, "SetVCPFeature failed")
	}
	return nil
}
