/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package natives

import (
	"math"
	"time"

	"github.com/cnxfgit/rjvm-learn/heap"
	"github.com/cnxfgit/rjvm-learn/verr"
)

// RegisterBuiltins installs the intrinsic catalogue spec.md §5 (expanded
// from the distilled spec's bare "tempPrint" hook) calls for: registerNatives
// no-ops, time/identity/gc intrinsics, the raw float/double bit conversions,
// and Throwable's stack-trace capture.
//
// Grounded on original_source/vm/src/native_methods_impl.rs's
// register_natives/register_noops/register_time_methods/register_gc_methods/
// register_native_repr_methods, one Go function per Rust register_* helper.
func RegisterBuiltins(r *Registry) {
	r.SetTempPrint(tempPrint)
	registerNoops(r)
	registerTimeMethods(r)
	registerGCMethods(r)
	registerRawReprMethods(r)
	registerThrowableMethods(r)
}

func tempPrint(ctx Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
	if len(args) > 0 {
		ctx.RecordPrinted(args[0])
	}
	return nil, nil
}

func registerNoops(r *Registry) {
	noop := func(Context, *heap.Value, []heap.Value) (*heap.Value, error) { return nil, nil }
	r.Register("java/lang/Object", "registerNatives", "()V", noop)
	r.Register("java/lang/System", "registerNatives", "()V", noop)
	r.Register("java/lang/Class", "registerNatives", "()V", noop)
	r.Register("java/lang/ClassLoader", "registerNatives", "()V", noop)
	r.Register("java/lang/Thread", "registerNatives", "()V", noop)
}

func registerTimeMethods(r *Registry) {
	r.Register("java/lang/System", "nanoTime", "()J", func(Context, *heap.Value, []heap.Value) (*heap.Value, error) {
		v := heap.Long(time.Now().UnixNano())
		return &v, nil
	})
	r.Register("java/lang/System", "currentTimeMillis", "()J", func(Context, *heap.Value, []heap.Value) (*heap.Value, error) {
		v := heap.Long(time.Now().UnixMilli())
		return &v, nil
	})
}

func registerGCMethods(r *Registry) {
	r.Register("java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I",
		func(ctx Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
			if len(args) != 1 || args[0].Kind != heap.ObjectVal || args[0].Ref == 0 {
				v := heap.Int(0)
				return &v, nil
			}
			v := heap.Int(int32(ctx.IdentityHash(args[0].Ref)))
			return &v, nil
		})
	r.Register("java/lang/System", "gc", "()V", func(ctx Context, _ *heap.Value, _ []heap.Value) (*heap.Value, error) {
		return nil, ctx.RunGC()
	})
	r.Register("java/lang/System", "arraycopy",
		"(Ljava/lang/Object;ILjava/lang/Object;II)V",
		func(ctx Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
			return nil, arrayCopy(ctx, args)
		})
}

// arrayCopy implements System.arraycopy(src, srcPos, dst, dstPos, length),
// grounded on original_source/vm/src/native_methods_impl.rs's
// native_array_copy (which in turn defers to array_copy, used directly by
// Vm::clone_array too).
func arrayCopy(ctx Context, args []heap.Value) error {
	if len(args) != 5 {
		return verr.NewValidationException()
	}
	src, srcPos, dst, dstPos, length := args[0], args[1], args[2], args[3], args[4]
	if src.Kind != heap.ObjectVal || src.Ref == 0 || dst.Kind != heap.ObjectVal || dst.Ref == 0 {
		return verr.NewNullPointerException()
	}
	elemType := ctx.ArrayElementsType(src.Ref)
	kind := heap.IntVal
	if elemType == heap.ArrayOfObject {
		kind = heap.ObjectVal
	}
	for i := int32(0); i < length.Int; i++ {
		v, err := ctx.GetElement(src.Ref, int(srcPos.Int+i), kind)
		if err != nil {
			return verr.NewArrayIndexOutOfBoundsException()
		}
		if err := ctx.SetElement(dst.Ref, int(dstPos.Int+i), v); err != nil {
			return verr.NewArrayIndexOutOfBoundsException()
		}
	}
	return nil
}

func registerRawReprMethods(r *Registry) {
	r.Register("java/lang/Float", "floatToRawIntBits", "(F)I",
		func(_ Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
			if len(args) != 1 {
				return nil, verr.NewValidationException()
			}
			v := heap.Int(int32(math.Float32bits(args[0].Float)))
			return &v, nil
		})
	r.Register("java/lang/Double", "doubleToRawLongBits", "(D)J",
		func(_ Context, _ *heap.Value, args []heap.Value) (*heap.Value, error) {
			if len(args) != 1 {
				return nil, verr.NewValidationException()
			}
			v := heap.Long(int64(math.Float64bits(args[0].Double)))
			return &v, nil
		})
}

// registerThrowableMethods installs the native stack-trace capture that a
// Throwable's (interpreted) fillInStackTrace() delegates to. The capture
// is the stack as it stands at the moment this native runs — the
// interpreted fillInStackTrace frame that called it is still the
// innermost live frame, which is exactly what scenario 5 of spec.md §8
// expects to see as the first element.
func registerThrowableMethods(r *Registry) {
	r.Register("java/lang/Throwable", "fillInStackTrace", "(I)Ljava/lang/Throwable;",
		func(ctx Context, receiver *heap.Value, _ []heap.Value) (*heap.Value, error) {
			if receiver == nil || receiver.Kind != heap.ObjectVal || receiver.Ref == 0 {
				return nil, verr.NewNullPointerException()
			}
			ctx.AssociateStackTrace(receiver.Ref, ctx.CaptureStackTrace())
			v := *receiver
			return &v, nil
		})
}
