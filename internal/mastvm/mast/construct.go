package mast

// Join builds a Join(a,b) node: execute a then b.
func Join(a, b NodeID) Node { return Node{Kind: KindJoin, Children: [2]NodeID{a, b}} }

// Split builds a Split(a,b) node: pop a boolean condition, execute a if 1
// else b.
func Split(a, b NodeID) Node { return Node{Kind: KindSplit, Children: [2]NodeID{a, b}} }

// Loop builds a Loop(body) node.
func Loop(body NodeID) Node { return Node{Kind: KindLoop, Children: [2]NodeID{body, 0}} }

// Call builds a Call(callee) node: execute callee in a fresh context.
func Call(callee NodeID) Node { return Node{Kind: KindCall, Callee: callee} }

// SysCall builds a SysCall(callee) node: like Call, but callee must be a
// kernel root.
func SysCall(callee NodeID) Node { return Node{Kind: KindSysCall, Callee: callee} }

// Dyn builds a Dyn node: the digest to execute is read from the stack at
// run time.
func Dyn() Node { return Node{Kind: KindDyn} }

// Dyncall builds a Dyncall node: like Dyn, but also switches context.
func Dyncall() Node { return Node{Kind: KindDyncall} }

// External builds a placeholder node resolved at runtime via the host.
func External(digest Digest) Node { return Node{Kind: KindExternal, ExternalDigest: digest} }
