// Package tool implements the function / tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side effects)
// with schema validated arguments and consistent error handling.
//
// A Tool is stateless: everything a call needs arrives through the
// *core.ToolContext and the argument map, so one tool instance serves
// concurrent runs without synchronization. Execute is the error-isolation
// boundary: whatever goes wrong inside a tool is converted into a string
// result the model can read and react to, never a failure of the run.
package tool
