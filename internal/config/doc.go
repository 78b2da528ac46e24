// Package config provides configuration parsing for retree tools.
//
// The configuration is stored in retree.json at the project root.
// This package handles loading, saving, and validating configuration.
// Every field is optional; missing values fall back to defaults.
//
// # Configuration File Structure
//
//	{
//	  "engine": {
//	    "initialCapacity": 256,
//	    "firstFrameRelayout": true,
//	    "debug": false
//	  },
//	  "inspector": {
//	    "host": "localhost",
//	    "port": 7070
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "retree"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  },
//	  "workload": {
//	    "items": 100,
//	    "interval": "250ms"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.InspectorURL())
package config
