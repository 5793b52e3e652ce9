// rdp_backend_vulkan.go - Vulkan instance/device/fence bring-up for the RDP

/*
rdp_backend_vulkan.go - RDPBackend Vulkan scaffold

Implements RDPBackend (rdp.go) with Vulkan instance/physical-device/
logical-device/fence bring-up only: SubmitCommands counts and discards
command words, and FrameComplete is signalled by a fence wait running
on its own goroutine per submitted SYNC_FULL. There is no pipeline, no
shader, no rasterization here by design — triangle/rectangle rendering
is an explicit non-goal of this core; a real frontend rasterizer
consumes SubmitCommands through this same interface. Grounded on the
teacher's VulkanBackend bring-up sequence in voodoo_vulkan.go
(createInstance/selectPhysicalDevice/createDevice/createFence), with
everything past fence creation (render pass, pipeline, framebuffers)
left to whatever frontend actually rasterizes. Libraries:
github.com/goki/vulkan.
*/

package main

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"
)

// VulkanRDPBackend holds a minimal Vulkan device plus a per-frame fence
// used only to model "the GPU is busy" completion signalling.
type VulkanRDPBackend struct {
	mu             sync.Mutex
	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queueFamily    uint32
	graphicsQueue  vk.Queue
	fence          vk.Fence
	ready          bool

	commandsSeen uint64
	frameDone    chan struct{}
}

// NewVulkanRDPBackend brings up a Vulkan instance/device/fence. On any
// bring-up failure it returns a backend with ready=false: SubmitCommands
// still counts words and FrameComplete still signals, so callers can
// run headless without Vulkan drivers present.
func NewVulkanRDPBackend() (*VulkanRDPBackend, error) {
	b := &VulkanRDPBackend{frameDone: make(chan struct{}, 1)}
	if err := b.bringUp(); err != nil {
		return b, fmt.Errorf("rdp vulkan bring-up degraded to no-op: %w", err)
	}
	return b, nil
}

func (b *VulkanRDPBackend) bringUp() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("load vulkan library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("init vulkan loader: %w", err)
	}
	if err := b.createInstance(); err != nil {
		return err
	}
	if err := b.selectPhysicalDevice(); err != nil {
		return err
	}
	if err := b.createDevice(); err != nil {
		return err
	}
	if err := b.createFence(); err != nil {
		return err
	}
	b.ready = true
	return nil
}

func (b *VulkanRDPBackend) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeVkString("n64 rdp"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeVkString("rdp bring-up"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	b.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (b *VulkanRDPBackend) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(b.instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no vulkan-capable GPUs found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(b.instance, &count, devices)

	for _, device := range devices {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, nil)
		families := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, families)
		for i, qf := range families {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				b.physicalDevice = device
				b.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("no GPU with a graphics queue found")
}

func (b *VulkanRDPBackend) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: b.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(b.physicalDevice, &deviceInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	b.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, b.queueFamily, 0, &queue)
	b.graphicsQueue = queue
	return nil
}

func (b *VulkanRDPBackend) createFence() error {
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	var fence vk.Fence
	if res := vk.CreateFence(b.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	b.fence = fence
	return nil
}

// SubmitCommands implements RDPBackend: counts the command words seen.
// No rasterization happens here.
func (b *VulkanRDPBackend) SubmitCommands(cmds []uint64) {
	b.mu.Lock()
	b.commandsSeen += uint64(len(cmds))
	b.mu.Unlock()
}

// FrameComplete implements RDPBackend: signals once per call, either
// after a real fence wait (when Vulkan bring-up succeeded) or
// immediately (degraded/no-op mode).
func (b *VulkanRDPBackend) FrameComplete() <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		if b.ready {
			vk.WaitForFences(b.device, 1, []vk.Fence{b.fence}, vk.Bool32(1), ^uint64(0))
			vk.ResetFences(b.device, 1, []vk.Fence{b.fence})
		}
		ch <- struct{}{}
	}()
	return ch
}

func safeVkString(s string) string {
	return s + "\x00"
}
