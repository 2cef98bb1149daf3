package main

// llvmPrelude is emitted verbatim ahead of every user function when the
// debug builtin is enabled: the printf declaration, the "%d\n" format
// constant, and the debug() definition itself (print one i64, newline,
// return). debug is always arity 1 and always Void — see functable.go.
const llvmPrelude = `declare i32 @printf(i8*, ...)
@str = constant [4 x i8] c"%d\0A\00"

define void @debug(i64 %n) {
entry:
  %0 = getelementptr [4 x i8], [4 x i8]* @str, i32 0, i32 0
  call i32 (i8*, ...) @printf(i8* %0, i64 %n)
  ret void
}

`
