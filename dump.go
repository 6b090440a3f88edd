package dne

import (
	"fmt"
	"io"
)

// vmDumper renders a snapshot of VM state for the -dump flag: a small
// struct wrapping vm+out, one method per section, walking the call-frame
// and heap model instead of a flat memory image.
type vmDumper struct {
	vm  *VM
	out io.Writer
}

// Dump writes a human-readable snapshot of vm's call stack, globals, and
// heap to out.
func Dump(vm *VM, out io.Writer) {
	(vmDumper{vm: vm, out: out}).dump()
}

func (d vmDumper) dump() {
	fmt.Fprintf(d.out, "# VM Dump\n")
	d.dumpFrames()
	d.dumpGlobals()
	d.dumpHeap()
	d.dumpCoroutines()
	d.dumpSymbols()
}

func (d vmDumper) dumpSymbols() {
	fmt.Fprintf(d.out, "  symbols: %d interned\n", d.vm.sym.count())
}

func (d vmDumper) dumpFrames() {
	fmt.Fprintf(d.out, "  frames:\n")
	for _, f := range d.vm.frames {
		d.dumpFrame("    ", f)
	}
	d.dumpFrame("  > ", d.vm.current)
}

func (d vmDumper) dumpFrame(prefix string, f Frame) {
	name := "?"
	var instrs []Op
	if f.ProcID >= 0 && f.ProcID < len(d.vm.procs) {
		proc := d.vm.procs[f.ProcID]
		name = proc.Name
		instrs = proc.Instrs
	}
	fmt.Fprintf(d.out, "%s%s@%d%s locals:%s\n", prefix, name, f.IP, d.nextOp(instrs, f.IP), d.values(f.Locals))
}

// nextOp renders the opDocs one-line description of the instruction f.IP is
// about to execute, or "" if IP is out of range (an ended/freshly-started
// coroutine's frame, or a bogus trace).
func (d vmDumper) nextOp(instrs []Op, ip int) string {
	if ip < 0 || ip >= len(instrs) {
		return ""
	}
	doc, ok := opDocs[instrs[ip].Code]
	if !ok {
		doc = instrs[ip].Code.String()
	}
	return fmt.Sprintf(" (%s)", doc)
}

func (d vmDumper) dumpGlobals() {
	fmt.Fprintf(d.out, "  globals:%s\n", d.values(d.vm.globals))
}

func (d vmDumper) dumpHeap() {
	fmt.Fprintf(d.out, "  heap:\n")
	for addr := uint(0); int(addr) < d.vm.heap.Len(); addr++ {
		cons, ok := d.vm.heap.Get(addr)
		if !ok {
			fmt.Fprintf(d.out, "    @%d free\n", addr)
			continue
		}
		fmt.Fprintf(d.out, "    @%d %s%s\n", addr, d.vm.sym.string(cons.Name), d.values(cons.Params))
	}
}

// dumpCoroutines surfaces every suspended coroutine reachable from a local,
// a global, or a heap cell's params, showing the frame it is parked in.
// Only coroActive coroutines have a frame to show; Start/DynStart haven't
// run yet and Ended has none left.
func (d vmDumper) dumpCoroutines() {
	fmt.Fprintf(d.out, "  coroutines:\n")
	seen := make(map[*Coroutine]bool)
	for _, f := range d.vm.frames {
		d.collectCoroutines(f.Locals, seen)
	}
	d.collectCoroutines(d.vm.current.Locals, seen)
	d.collectCoroutines(d.vm.globals, seen)
	for addr := uint(0); int(addr) < d.vm.heap.Len(); addr++ {
		if cons, ok := d.vm.heap.Get(addr); ok {
			d.collectCoroutines(cons.Params, seen)
		}
	}

	for co := range seen {
		if co.state != coroActive || co.frame == nil {
			continue
		}
		d.dumpFrame(fmt.Sprintf("    suspended %p ", co), *co.frame)
	}
}

func (d vmDumper) collectCoroutines(vs []Value, seen map[*Coroutine]bool) {
	for _, v := range vs {
		if co, ok := v.Coroutine(); ok && co != nil {
			seen[co] = true
		}
	}
}

func (d vmDumper) values(vs []Value) string {
	var buf []byte
	buf = append(buf, '[')
	for i, v := range vs {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, v.ToString(&d.vm.sym)...)
	}
	buf = append(buf, ']')
	return string(buf)
}
