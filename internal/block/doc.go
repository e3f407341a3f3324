// Package block holds what the built-in block kinds share: their operation
// codes, the optional capabilities used by code generation and simulation,
// and helpers to read numeric inputs and content fields.
package block
