package streamtest

import (
	"math"

	"github.com/dhamidi/serialdump/stream"
)

func handle(n int) stream.Handle {
	return stream.BaseHandle + stream.Handle(n)
}

// ChildParent is a stream holding one Child object whose superclass is
// Parent, followed by a second object that refers to Parent's descriptor
// by handle.
//
//	class Parent implements Serializable { int a = 42; }
//	class Child extends Parent { String name = "bob"; }
//
// Handles: Child desc 0, "Ljava/lang/String;" 1, Parent desc 2, object 3,
// "bob" 4, second object 5.
func ChildParent() []byte {
	return New().Header().
		Tag(stream.TCObject).
		ClassDesc("Child", 0x0102030405060708, stream.SCSerializable).
		Fields(1).
		ObjectField(stream.TypeObject, "name", "Ljava/lang/String;").
		End().
		ClassDesc("Parent", 0x1, stream.SCSerializable).
		Fields(1).
		Field(stream.TypeInt, "a").
		End().
		Null().
		U4(42).
		String("bob").
		Tag(stream.TCObject).
		Ref(handle(2)).
		U4(7).
		Bytes()
}

// Everything is a stream that exercises every element kind the parser
// decodes. Handles are assigned in this order:
//
//	0 "hello"          1 long "abc"       2 desc [I          3 int array
//	4 desc Color       5 desc Enum        6 enum RED         7 "RED"
//	8 class Color      9 desc Ext         10 Ext object      11 desc Custom
//	12 "[I"            13 Custom object   14 "extra"         15 proxy desc
//	16 desc Proxy      17 handler type    18 proxy object    19 desc Prims
//	20 Prims object
func Everything() []byte {
	b := New().Header()

	b.String("hello")
	b.LongString("abc")
	b.BlockData(0x01, 0x02)
	b.LongBlockData(0xaa, 0xbb, 0xcc)

	b.Tag(stream.TCArray).
		ClassDesc("[I", 0x4db9a2ea6a7d6a9e, stream.SCSerializable).
		Fields(0).End().Null().
		U4(3).U4(1).U4(2).U4(0xffffffff)

	b.Tag(stream.TCEnum).
		ClassDesc("Color", 0, stream.SCSerializable|stream.SCEnum).
		Fields(0).End().
		ClassDesc("java.lang.Enum", 0, stream.SCSerializable|stream.SCEnum).
		Fields(0).End().Null().
		String("RED")

	b.Tag(stream.TCClass).Ref(handle(4))

	b.Tag(stream.TCObject).
		ClassDesc("Ext", 0x10, stream.SCExternalizable|stream.SCBlockData).
		Fields(0).End().Null().
		BlockData(0xff).End()

	b.Tag(stream.TCObject).
		ClassDesc("Custom", 0x20, stream.SCSerializable|stream.SCWriteMethod).
		Fields(2).
		Field(stream.TypeBoolean, "flag").
		ObjectField(stream.TypeArray, "data", "[I").
		End().Null().
		Byte(0x01).
		Ref(handle(3)).
		String("extra").End()

	b.Tag(stream.TCObject).
		Tag(stream.TCProxyClassDesc).
		U4(1).UTF("java.lang.Runnable").
		End().
		ClassDesc("java.lang.reflect.Proxy", 0xe127da20cc1043cb, stream.SCSerializable).
		Fields(1).
		ObjectField(stream.TypeObject, "h", "Ljava/lang/reflect/InvocationHandler;").
		End().Null().
		Null()

	b.Tag(stream.TCObject).
		ClassDesc("Prims", 0x30, stream.SCSerializable).
		Fields(7).
		Field(stream.TypeByte, "b").
		Field(stream.TypeChar, "c").
		Field(stream.TypeDouble, "d").
		Field(stream.TypeFloat, "f").
		Field(stream.TypeLong, "j").
		Field(stream.TypeShort, "s").
		Field(stream.TypeObject, "o").Ref(handle(0)).
		End().Null().
		Byte(0x41).
		U2('B').
		U8(math.Float64bits(1.5)).
		U4(math.Float32bits(2.5)).
		U8(0xfffffffffffffffe).
		U2(7).
		Ref(handle(6))

	b.Null()
	b.Ref(handle(0))

	return b.Bytes()
}
