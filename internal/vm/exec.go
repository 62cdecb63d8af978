package vm

import "github.com/painless-lang/painless/internal/registry"

// run executes one frame to completion, returning the value of whatever
// Return instruction it hit (or null on falling off the end of the
// chunk — a function with no explicit return on every path never reaches
// the analyzer's acceptance in the first place, so this only fires for the
// top-level script body, spec.md §2).
func (m *Machine) run(f *frame) (any, bool, error) {
	for {
		if f.ip >= len(f.chunk.Code) {
			return nil, false, nil
		}
		inst := f.chunk.Code[f.ip]
		ip := f.ip
		f.ip++

		switch inst.OpCode() {
		case Line:
			// debug-info only; no stack effect.

		case PushConst:
			f.push(f.chunk.Constants[inst.B()])
		case PushNull:
			f.push(nil)
		case PushTrue:
			f.push(true)
		case PushFalse:
			f.push(false)
		case Dup:
			f.push(f.peek())
		case Pop:
			n := int(inst.A())
			if n == 0 {
				n = 1
			}
			f.popN(n)

		case Load:
			f.push(f.locals[inst.B()])
		case Store:
			f.locals[inst.B()] = f.pop()

		case NewArray:
			dims := int(inst.A())
			if dims == 0 {
				dims = 1
			}
			sizes := f.popN(dims)
			n, err := asInt(sizes[0])
			if err != nil {
				return nil, false, err
			}
			f.push(NewPList(make([]any, n)))

		case ArrayLoad:
			idx := f.pop()
			arr := f.pop()
			v, err := dynamicIndexGet(arr, idx)
			if err != nil {
				if v, handled := m.handleThrow(f, ip, err); handled {
					f.push(v)
					continue
				}
				return nil, false, err
			}
			f.push(v)
		case ArrayStore:
			val := f.pop()
			idx := f.pop()
			arr := f.pop()
			if err := dynamicIndexSet(arr, idx, val); err != nil {
				if v, handled := m.handleThrow(f, ip, err); handled {
					f.push(v)
					continue
				}
				return nil, false, err
			}
		case ArrayLen:
			arr := f.pop()
			f.push(int32(listLen(arr)))

		case MakeArray, MakeList:
			n := int(inst.A())
			elems := f.popN(n)
			f.push(NewPList(elems))

		case MakeMap:
			n := int(inst.A())
			kvs := f.popN(n * 2)
			pm := NewPMap()
			for i := 0; i < n; i++ {
				pm.Put(kvs[i*2], kvs[i*2+1])
			}
			f.push(pm)

		case NewInstance:
			ctor := f.chunk.Constants[inst.B()].(*registry.Method)
			args := f.popN(int(inst.A()))
			obj := newInstance(ctor.Owner.Name)
			if ctor.Owner.LookupField("message") != nil && len(args) > 0 {
				obj.Fields["message"] = args[0]
			}
			f.push(obj)

		case GetField:
			field := f.chunk.Constants[inst.B()].(*registry.Field)
			recv := f.pop().(*Instance)
			if v, ok := recv.Fields[field.Name]; ok {
				f.push(v)
			} else {
				f.push(nil)
			}
		case PutField:
			field := f.chunk.Constants[inst.B()].(*registry.Field)
			val := f.pop()
			recv := f.pop().(*Instance)
			if recv.Fields == nil {
				recv.Fields = map[string]any{}
			}
			recv.Fields[field.Name] = val

		case Invoke:
			argc := int(inst.A())
			payload := f.chunk.Constants[inst.B()]
			var (
				result any
				err    error
			)
			switch target := payload.(type) {
			case *registry.Method:
				args := f.popN(argc)
				var recv any
				if !target.Static {
					recv = f.pop()
				}
				result, err = invokeHostMethod(asInstance(recv), target, args)
			case *Function:
				args := f.popN(argc)
				result, err = m.call(target, args)
			}
			if err != nil {
				if v, handled := m.handleThrow(f, ip, err); handled {
					f.push(v)
					continue
				}
				return nil, false, err
			}
			f.push(result)

		case InvokeDynamic:
			argc := int(inst.A())
			desc := f.chunk.Constants[inst.B()].(*CallSiteDescriptor)
			args := f.popN(argc)
			result, err := m.invokeDynamic(desc, args)
			if err != nil {
				if v, handled := m.handleThrow(f, ip, err); handled {
					f.push(v)
					continue
				}
				return nil, false, err
			}
			f.push(result)

		case MakeClosure:
			fn := f.chunk.Constants[inst.B()].(*Function)
			captures := f.popN(int(inst.A()))
			f.push(&BoundFunc{Fn: fn, Captures: captures})

		case Add, Sub, Mul, Div, Rem, BitAnd, BitOr, BitXor, Shl, Shr, Ushr:
			r := f.pop()
			l := f.pop()
			v, err := staticArith(inst.OpCode(), l, r)
			if err != nil {
				if rv, handled := m.handleThrow(f, ip, err); handled {
					f.push(rv)
					continue
				}
				return nil, false, err
			}
			f.push(v)
		case Neg:
			f.push(negate(f.pop()))
		case Pos:
			// no-op beyond the static unary-plus type promotion already applied
		case BitNot:
			f.push(bitNot(f.pop()))
		case Not:
			f.push(!truthy(f.pop()))

		case CmpEq, CmpNe, CmpLt, CmpLe, CmpGt, CmpGe:
			r := f.pop()
			l := f.pop()
			f.push(staticCompare(inst.OpCode(), l, r))

		case InstanceOf:
			typ := f.chunk.Constants[inst.B()].(*registry.Type)
			v := f.pop()
			f.push(isInstanceOf(m.registry(), v, typ))

		case Coerce:
			typ := f.chunk.Constants[inst.B()].(*registry.Type)
			f.push(coerce(f.pop(), typ))
		case CastCheck:
			typ := f.chunk.Constants[inst.B()].(*registry.Type)
			v := f.pop()
			if v != nil && !isInstanceOf(m.registry(), v, typ) {
				err := newRuntimeError("class-cast", "cannot cast %s to %s", structNameOf(v), typ)
				if rv, handled := m.handleThrow(f, ip, err); handled {
					f.push(rv)
					continue
				}
				return nil, false, err
			}
			f.push(v)

		case Jump:
			f.ip = ip + 1 + int(inst.Offset())
		case JumpIfFalse:
			if !truthy(f.pop()) {
				f.ip = ip + 1 + int(inst.Offset())
			}
		case JumpIfTrue:
			if truthy(f.pop()) {
				f.ip = ip + 1 + int(inst.Offset())
			}
		case JumpIfFalseNP:
			if !truthy(f.peek()) {
				f.ip = ip + 1 + int(inst.Offset())
			}
		case JumpIfTrueNP:
			if truthy(f.peek()) {
				f.ip = ip + 1 + int(inst.Offset())
			}

		case LoopTick:
			if err := m.tickLoop(); err != nil {
				if v, handled := m.handleThrow(f, ip, err); handled {
					f.push(v)
					continue
				}
				return nil, false, err
			}

		case Return:
			return f.pop(), true, nil
		case ReturnVoid:
			return nil, true, nil

		case Throw:
			exc := f.pop()
			err := &thrown{value: exc}
			if v, handled := m.handleThrow(f, ip, err); handled {
				f.push(v)
				continue
			}
			return nil, false, err

		default:
			return nil, false, newRuntimeError("bad-opcode", "unhandled opcode %s", inst.OpCode())
		}
	}
}

func asInstance(v any) *Instance {
	if o, ok := v.(*Instance); ok {
		return o
	}
	return nil
}

func listLen(v any) int {
	switch l := v.(type) {
	case *PList:
		return l.Len()
	case *PMap:
		return l.Len()
	}
	return 0
}

// handleThrow searches the frame's try table for a catch arm covering ip
// that accepts err's thrown value, jumps to its handler and reports the
// value to push for the catch variable. Only a script-level throw is
// dispatched; a *RuntimeError is never caught. It does not handle
// Machine-propagated errors from a sub-call (those already unwound past
// any try range in the callee and must keep propagating up through Invoke
// in the caller's own frame, which runs this same search again there).
func (m *Machine) handleThrow(f *frame, ip int, err error) (any, bool) {
	var value any
	switch e := err.(type) {
	case *thrown:
		value = e.value
	case *RuntimeError:
		return nil, false
	default:
		return nil, false
	}
	for _, t := range f.chunk.Tries {
		if ip < t.Begin || ip >= t.End {
			continue
		}
		if t.CatchType != "" {
			obj, ok := value.(*Instance)
			if !ok {
				continue
			}
			s := m.registry().LookupType(t.CatchType)
			if s == nil || s.Struct == nil {
				continue
			}
			hostStruct := m.registry().RuntimeClassFor(obj.StructName)
			if hostStruct == nil || !hostStruct.Struct.IsSubtypeOf(s.Struct) {
				continue
			}
		}
		f.ip = t.Handler
		return value, true
	}
	return nil, false
}
