// Package manifest is the HCL implementation of config.Loader.
//
// A manifest file may hold any mix of four top-level blocks:
//
//	block "math_number" {
//	  output { check = ["Number"] }
//	  input "dummy" "" {
//	    field "number" "NUM" { default = 0 }
//	  }
//	}
//
//	workspace {
//	  max_blocks = 100
//	  renderer   = "zelos"
//	}
//
//	renderer "zelos" {
//	  notch_width = 40
//	}
//
//	relay {
//	  url = "http://localhost:3000"
//	}
//
// Block definitions from every file are merged into one model; a type
// defined twice is an error. At most one workspace block and one relay block
// may exist.
package manifest
