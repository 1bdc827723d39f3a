package kmain

import (
	"coopos/kernel"
	"coopos/kernel/conf"
	"coopos/kernel/cpu"
	"coopos/kernel/hal"
	"coopos/kernel/kfmt"
	"coopos/kernel/task"
	"coopos/kernel/task/keyboard"
	"coopos/multiboot"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// Kmain is the only Go symbol that is visible (exported) from the rt0 initialization
// code. This function is invoked by the rt0 assembly code after setting up the GDT
// and setting up a a minimal g0 struct that allows Go code using the 4K stack
// allocated by the assembly code.
//
// The rt0 code passes the address of the multiboot info payload provided by the
// bootloader. The kernel command line may override the embedded boot
// configuration; see conf.Config.WithCmdLine.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	defer func() {
		if err := recover(); err != nil {
			kfmt.Panic(err)
		}
	}()

	multiboot.SetInfoPtr(multibootInfoPtr)
	cfg := conf.Embedded().WithCmdLine(multiboot.GetBootCmdLine())

	Boot(cpu.Local{}, cfg, keyboard.PrintKeypresses())

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// Boot activates cfg, attaches the drivers for the detected hardware and
// hands c over to a task executor that runs entry. Boot does not return.
//
// The scancode stream is created by a task that runs to completion before
// interrupts are enabled so the keyboard handler always finds a queue.
func Boot(c task.CPU, cfg conf.Config, entry task.Future) {
	conf.Use(cfg)
	hal.DetectHardware()
	kfmt.ReportOK("%s %s", cfg.ProjectName, cfg.ProjectVersion)

	executor := task.NewExecutor(task.WithCPU(c))
	executor.Spawn(task.New(keyboard.Init()))
	executor.RunFirstTaskInQueue()

	c.EnableInterrupts()

	executor.Spawn(task.New(entry))
	executor.Run()
}
