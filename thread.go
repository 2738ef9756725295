// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schnauzer

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// Thread state flavors understood by Registers.
const (
	X86ThreadState32    uint32 = 1
	X86ThreadState64    uint32 = 4
	ArmThreadState      uint32 = 1
	ArmExceptionState   uint32 = 3
	ArmThreadState64    uint32 = 6
	ArmExceptionState64 uint32 = 7
)

const threadFlavorHdrSize = 8

// A Thread is LC_THREAD or LC_UNIXTHREAD: a run of (flavor, count, state)
// records filling the rest of the command.
type Thread struct {
	Cmd types.LoadCmd

	offset int64
	size   uint32
	m      *MachObject
}

// A ThreadState is one flavor record of a thread command.
type ThreadState struct {
	Flavor uint32
	Count  uint32 // state size in 32-bit words
	// State is the raw register block.
	State BitVec

	cpu types.CPU
	m   *MachObject
}

// Flavors walks the state records. The walk ends at the end of the command;
// a record whose state runs past it is an error.
func (t *Thread) Flavors() *Iterator[*ThreadState] {
	pos := t.offset + 8
	end := t.offset + int64(t.size)
	bo := t.m.ByteOrder()
	return newIterator(func() (*ThreadState, bool, error) {
		if end-pos < threadFlavorHdrSize {
			return nil, false, nil
		}
		var hdr types.ThreadFlavorHdr
		if err := t.m.r.decode(pos, bo, &hdr); err != nil {
			return nil, false, err
		}
		state := int64(hdr.Count) * 4
		if state > end-pos-threadFlavorHdrSize {
			return nil, false, badLength(pos, "thread state past end of command", hdr.Count)
		}
		ts := &ThreadState{
			Flavor: hdr.Flavor,
			Count:  hdr.Count,
			State:  BitVec{r: t.m.r, Offset: pos + threadFlavorHdrSize, Size: uint32(state)},
			cpu:    t.m.Header.CPU,
			m:      t.m,
		}
		pos += threadFlavorHdrSize + state
		return ts, true, nil
	})
}

// EntryPoint returns the program counter of the first general purpose
// register state, which for LC_UNIXTHREAD is the initial pc.
func (t *Thread) EntryPoint() (uint64, error) {
	it := t.Flavors()
	for it.Next() {
		regs, err := it.Value().Registers()
		if err != nil {
			continue
		}
		if pc, ok := regs.(interface{ PC() uint64 }); ok {
			return pc.PC(), nil
		}
	}
	if err := it.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("no general purpose thread state")
}

func (t *Thread) Fields() []types.Field {
	var fields []types.Field
	it := t.Flavors()
	for i := 0; it.Next(); i++ {
		ts := it.Value()
		fields = append(fields,
			types.F(fmt.Sprintf("flavor[%d]", i), ts.Flavor),
			types.F(fmt.Sprintf("count[%d]", i), ts.Count))
		if regs, err := ts.Registers(); err == nil {
			fields = append(fields, regs.Fields()...)
		}
	}
	return fields
}

// Registers decodes the state as the register set its cpu and flavor name.
func (ts *ThreadState) Registers() (types.Fielder, error) {
	var regs types.Fielder
	switch {
	case ts.cpu == types.CPU386 && ts.Flavor == X86ThreadState32:
		regs = &Regs386{}
	case ts.cpu == types.CPUAmd64 && ts.Flavor == X86ThreadState64:
		regs = &RegsAMD64{}
	case ts.cpu == types.CPUArm && ts.Flavor == ArmThreadState:
		regs = &RegsARM{}
	case ts.cpu == types.CPUArm && ts.Flavor == ArmExceptionState:
		regs = &ArmExceptState{}
	case (ts.cpu == types.CPUArm64 || ts.cpu == types.CPUArm6432) && ts.Flavor == ArmThreadState64:
		regs = &RegsARM64{}
	case (ts.cpu == types.CPUArm64 || ts.cpu == types.CPUArm6432) && ts.Flavor == ArmExceptionState64:
		regs = &ArmExceptState64{}
	default:
		return nil, errors.Errorf("unknown thread flavor %d for %s", ts.Flavor, ts.cpu)
	}
	if binary.Size(regs) > int(ts.State.Size) {
		return nil, badLength(ts.State.Offset, "thread state shorter than its flavor", ts.Count)
	}
	if err := ts.m.r.decode(ts.State.Offset, ts.m.ByteOrder(), regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func regFields(names []string, vals []uint64, width int) []types.Field {
	fields := make([]types.Field, len(names))
	for i, n := range names {
		fields[i] = types.Field{Name: n, Value: fmt.Sprintf("%#0*x", width+2, vals[i])}
	}
	return fields
}

// Regs386 is the i386 x86_THREAD_STATE32 register set.
type Regs386 struct {
	AX, BX, CX, DX uint32
	DI, SI, BP, SP uint32
	SS, FLAGS, IP  uint32
	CS, DS, ES     uint32
	FS, GS         uint32
}

func (r *Regs386) PC() uint64 { return uint64(r.IP) }

func (r *Regs386) Fields() []types.Field {
	return regFields(
		[]string{"eax", "ebx", "ecx", "edx", "edi", "esi", "ebp", "esp",
			"ss", "eflags", "eip", "cs", "ds", "es", "fs", "gs"},
		[]uint64{uint64(r.AX), uint64(r.BX), uint64(r.CX), uint64(r.DX),
			uint64(r.DI), uint64(r.SI), uint64(r.BP), uint64(r.SP),
			uint64(r.SS), uint64(r.FLAGS), uint64(r.IP), uint64(r.CS),
			uint64(r.DS), uint64(r.ES), uint64(r.FS), uint64(r.GS)},
		8)
}

// RegsAMD64 is the x86_64 x86_THREAD_STATE64 register set.
type RegsAMD64 struct {
	AX, BX, CX, DX     uint64
	DI, SI, BP, SP     uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64
	IP, FLAGS          uint64
	CS, FS, GS         uint64
}

func (r *RegsAMD64) PC() uint64 { return r.IP }

func (r *RegsAMD64) Fields() []types.Field {
	return regFields(
		[]string{"rax", "rbx", "rcx", "rdx", "rdi", "rsi", "rbp", "rsp",
			"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
			"rip", "rflags", "cs", "fs", "gs"},
		[]uint64{r.AX, r.BX, r.CX, r.DX, r.DI, r.SI, r.BP, r.SP,
			r.R8, r.R9, r.R10, r.R11, r.R12, r.R13, r.R14, r.R15,
			r.IP, r.FLAGS, r.CS, r.FS, r.GS},
		16)
}

// RegsARM is the ARM_THREAD_STATE register set.
type RegsARM struct {
	R    [13]uint32
	SP   uint32
	LR   uint32
	Pc   uint32
	CPSR uint32
}

func (r *RegsARM) PC() uint64 { return uint64(r.Pc) }

func (r *RegsARM) Fields() []types.Field {
	names := make([]string, 0, 17)
	vals := make([]uint64, 0, 17)
	for i, v := range r.R {
		names = append(names, fmt.Sprintf("r%d", i))
		vals = append(vals, uint64(v))
	}
	names = append(names, "sp", "lr", "pc", "cpsr")
	vals = append(vals, uint64(r.SP), uint64(r.LR), uint64(r.Pc), uint64(r.CPSR))
	return regFields(names, vals, 8)
}

// RegsARM64 is the ARM_THREAD_STATE64 register set.
type RegsARM64 struct {
	X    [29]uint64 // x0-x28
	FP   uint64     // x29
	LR   uint64     // x30
	SP   uint64     // x31
	Pc   uint64
	CPSR uint32
	Pad  uint32
}

func (r *RegsARM64) PC() uint64 { return r.Pc }

func (r *RegsARM64) Fields() []types.Field {
	names := make([]string, 0, 34)
	vals := make([]uint64, 0, 34)
	for i, v := range r.X {
		names = append(names, fmt.Sprintf("x%d", i))
		vals = append(vals, v)
	}
	names = append(names, "fp", "lr", "sp", "pc")
	vals = append(vals, r.FP, r.LR, r.SP, r.Pc)
	return append(regFields(names, vals, 16),
		types.Hex("cpsr", uint64(r.CPSR)),
		types.Hex("pad", uint64(r.Pad)))
}

// ArmExceptState is the ARM_EXCEPTION_STATE set.
type ArmExceptState struct {
	FAR       uint32 // virtual fault address
	ESR       uint32 // exception syndrome
	Exception uint32 // number of arm exception taken
}

func (r *ArmExceptState) Fields() []types.Field {
	return []types.Field{
		types.Hex("far", uint64(r.FAR)),
		types.Hex("esr", uint64(r.ESR)),
		types.Hex("exception", uint64(r.Exception)),
	}
}

// ArmExceptState64 is the ARM_EXCEPTION_STATE64 set.
type ArmExceptState64 struct {
	FAR       uint64
	ESR       uint32
	Exception uint32
}

func (r *ArmExceptState64) Fields() []types.Field {
	return []types.Field{
		types.Hex("far", r.FAR),
		types.Hex("esr", uint64(r.ESR)),
		types.Hex("exception", uint64(r.Exception)),
	}
}
