// Package expr compiles the HCL expressions used by block contents.
//
// An expression may reference a fixed set of variables and call the math
// functions in Functions. Compiled expressions evaluate to cty values and can
// be translated into equivalent Go expressions for code generation.
package expr
